package eligibility

import "fmt"

// RuleCode identifies the business rule a validation failed on.
type RuleCode string

const (
	RulePastDate                RuleCode = "PAST_DATE"
	RuleSameDayCutoff           RuleCode = "SAME_DAY_CUTOFF"
	RuleSundayBlackout          RuleCode = "SUNDAY_BLACKOUT"
	RuleVehicleClosed           RuleCode = "VEHICLE_CLOSED"
	RuleDayUnavailable          RuleCode = "DAY_UNAVAILABLE"
	RuleVehicleDistrictMismatch RuleCode = "VEHICLE_DISTRICT_MISMATCH"
	RuleVehicleCapacity         RuleCode = "VEHICLE_CAPACITY"
	RuleDistrictDayCapacity     RuleCode = "DISTRICT_DAY_CAPACITY"
)

// RuleError is a business-rule violation. Message is operator-facing and
// carries the offending quantities; Count/Limit expose them structurally for
// callers that render their own text.
type RuleError struct {
	Code    RuleCode
	Message string
	Count   int
	Limit   int
}

func (e *RuleError) Error() string {
	return e.Message
}

func ruleErrorf(code RuleCode, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}
