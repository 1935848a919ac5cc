package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"delivery-service/internal/http/middleware"
	"delivery-service/internal/model"
	"delivery-service/internal/repository"
	"delivery-service/internal/service"
)

func (h *Handler) listWeekDays(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	days, err := h.scheduleService.ListWeekDays(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": days}))
}

func (h *Handler) updateWeekDay(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid week day id"))
		return
	}

	var req struct {
		Active          *bool   `json:"active"`
		TemporaryClosed *bool   `json:"temporary_closed"`
		ClosureReason   *string `json:"closure_reason"`
		ClosureStart    *string `json:"closure_start"`
		ClosureEnd      *string `json:"closure_end"`
		DailyMax        *int    `json:"daily_max"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.UpdateWeekDayInput{
		Active:          req.Active,
		TemporaryClosed: req.TemporaryClosed,
		ClosureReason:   req.ClosureReason,
		DailyMax:        req.DailyMax,
	}
	if req.ClosureStart != nil {
		start, err := time.Parse(dateLayout, *req.ClosureStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid closure_start, expected YYYY-MM-DD"))
			return
		}
		input.ClosureStart = &start
	}
	if req.ClosureEnd != nil {
		end, err := time.Parse(dateLayout, *req.ClosureEnd)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid closure_end, expected YYYY-MM-DD"))
			return
		}
		input.ClosureEnd = &end
	}

	day, err := h.scheduleService.UpdateWeekDay(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(day))
}

func (h *Handler) listAssignments(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var weekDayID, districtID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("week_day_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid week_day_id"))
			return
		}
		weekDayID = &id
	}
	if raw := strings.TrimSpace(c.Query("district_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
			return
		}
		districtID = &id
	}

	assignments, err := h.scheduleService.ListAssignments(c.Request.Context(), principal, weekDayID, districtID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": assignments}))
}

func (h *Handler) upsertAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		WeekDayID     string  `json:"week_day_id" binding:"required"`
		DistrictID    string  `json:"district_id" binding:"required"`
		EffectiveDate *string `json:"effective_date"`
		MaxDeliveries int     `json:"max_deliveries" binding:"required"`
		SpecialStatus string  `json:"special_status"`
		Notes         string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	weekDayID, err := uuid.Parse(strings.TrimSpace(req.WeekDayID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid week_day_id"))
		return
	}
	districtID, err := uuid.Parse(strings.TrimSpace(req.DistrictID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
		return
	}

	input := service.AssignmentInput{
		WeekDayID:     weekDayID,
		DistrictID:    districtID,
		MaxDeliveries: req.MaxDeliveries,
		SpecialStatus: model.SpecialStatus(strings.ToUpper(strings.TrimSpace(req.SpecialStatus))),
		Notes:         req.Notes,
	}
	if req.EffectiveDate != nil {
		date, err := time.Parse(dateLayout, *req.EffectiveDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid effective_date, expected YYYY-MM-DD"))
			return
		}
		input.EffectiveDate = &date
	}

	assignment, err := h.scheduleService.UpsertAssignment(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(assignment))
}

func (h *Handler) deleteAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid assignment id"))
		return
	}

	if err := h.scheduleService.DeleteAssignment(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "deleted"}))
}

func (h *Handler) availability(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var districtID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("district_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
			return
		}
		districtID = &id
	}

	var from time.Time
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid from, expected YYYY-MM-DD"))
			return
		}
		from = parsed
	}

	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			days = v
		}
	}

	dates, err := h.scheduleService.Availability(c.Request.Context(), principal, districtID, from, days)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": dates}))
}

func (h *Handler) listDistricts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var filter repository.DistrictFilter
	if raw := strings.TrimSpace(c.Query("side")); raw != "" {
		side := model.DistrictSide(strings.ToUpper(raw))
		filter.Side = &side
	}
	filter.ActiveOnly = c.Query("active") == "true"
	filter.DeliveryOn = c.Query("delivery_enabled") == "true"
	filter.Search = strings.TrimSpace(c.Query("search"))

	districts, err := h.scheduleService.ListDistricts(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": districts}))
}

func (h *Handler) createDistrict(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
		Side string `json:"side"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	side := model.SideForDistrictName(req.Name)
	if req.Side != "" {
		side = model.DistrictSide(strings.ToUpper(strings.TrimSpace(req.Side)))
	}

	district, err := h.scheduleService.CreateDistrict(c.Request.Context(), principal, service.CreateDistrictInput{
		Name: req.Name,
		Side: side,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(district))
}

func (h *Handler) updateDistrict(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid district id"))
		return
	}

	var req struct {
		Side            *string `json:"side"`
		Active          *bool   `json:"active"`
		DeliveryEnabled *bool   `json:"delivery_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var input service.UpdateDistrictInput
	if req.Side != nil {
		side := model.DistrictSide(strings.ToUpper(strings.TrimSpace(*req.Side)))
		input.Side = &side
	}
	input.Active = req.Active
	input.DeliveryEnabled = req.DeliveryEnabled

	district, err := h.scheduleService.UpdateDistrict(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(district))
}

func (h *Handler) seedDistricts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	created, err := h.scheduleService.SeedDistricts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"created": created}))
}
