package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/http/middleware"
	"delivery-service/internal/model"
	"delivery-service/internal/service"
)

const dateLayout = "2006-01-02"

type Handler struct {
	deliveryService *service.DeliveryService
	approvalService *service.ApprovalService
	vehicleService  *service.VehicleService
	scheduleService *service.ScheduleService
	log             zerolog.Logger
}

func NewHandler(
	deliveryService *service.DeliveryService,
	approvalService *service.ApprovalService,
	vehicleService *service.VehicleService,
	scheduleService *service.ScheduleService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		deliveryService: deliveryService,
		approvalService: approvalService,
		vehicleService:  vehicleService,
		scheduleService: scheduleService,
		log:             log,
	}
}

func (h *Handler) listDeliveries(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	opts, err := parseDeliveryQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.deliveryService.List(c.Request.Context(), principal, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) getDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid delivery id"))
		return
	}

	record, err := h.deliveryService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

type deliveryLinePayload struct {
	Product  string  `json:"product" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (h *Handler) createDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		DeliveryDate    string                `json:"delivery_date" binding:"required"`
		VehicleID       string                `json:"vehicle_id" binding:"required"`
		DistrictID      string                `json:"district_id" binding:"required"`
		CustomerName    string                `json:"customer_name" binding:"required"`
		CustomerPhone   string                `json:"customer_phone"`
		ManualPhone     string                `json:"manual_phone"`
		CustomerAddress string                `json:"customer_address"`
		DriverName      string                `json:"driver_name"`
		TransferRef     string                `json:"transfer_ref"`
		Priority        int                   `json:"priority"`
		Notes           string                `json:"notes"`
		Lines           []deliveryLinePayload `json:"lines"`
		RequestApproval bool                  `json:"request_approval"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	date, err := time.Parse(dateLayout, req.DeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid delivery_date, expected YYYY-MM-DD"))
		return
	}
	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
		return
	}
	districtID, err := uuid.Parse(strings.TrimSpace(req.DistrictID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
		return
	}

	input := service.CreateDeliveryInput{
		DeliveryDate:    date,
		VehicleID:       vehicleID,
		DistrictID:      districtID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		ManualPhone:     req.ManualPhone,
		CustomerAddress: req.CustomerAddress,
		DriverName:      req.DriverName,
		TransferRef:     req.TransferRef,
		Priority:        req.Priority,
		Notes:           req.Notes,
		RequestApproval: req.RequestApproval,
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, service.DeliveryLineInput{
			Product:  line.Product,
			Quantity: line.Quantity,
			Unit:     line.Unit,
		})
	}

	record, err := h.deliveryService.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(record))
}

func (h *Handler) updateDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid delivery id"))
		return
	}

	var req struct {
		DeliveryDate *string `json:"delivery_date"`
		VehicleID    *string `json:"vehicle_id"`
		DistrictID   *string `json:"district_id"`
		DriverName   *string `json:"driver_name"`
		Notes        *string `json:"notes"`
		Priority     *int    `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var input service.UpdateDeliveryInput
	if req.DeliveryDate != nil {
		date, err := time.Parse(dateLayout, *req.DeliveryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid delivery_date, expected YYYY-MM-DD"))
			return
		}
		input.DeliveryDate = &date
	}
	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(strings.TrimSpace(*req.VehicleID))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
			return
		}
		input.VehicleID = &vehicleID
	}
	if req.DistrictID != nil {
		districtID, err := uuid.Parse(strings.TrimSpace(*req.DistrictID))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
			return
		}
		input.DistrictID = &districtID
	}
	input.DriverName = req.DriverName
	input.Notes = req.Notes
	input.Priority = req.Priority

	record, err := h.deliveryService.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(record))
}

func (h *Handler) dispatchDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid delivery id"))
		return
	}

	if err := h.deliveryService.Dispatch(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "dispatched"}))
}

func (h *Handler) completeDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid delivery id"))
		return
	}

	var req struct {
		ReceivedBy string `json:"received_by"`
		Note       string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.CompleteDeliveryInput{ReceivedBy: req.ReceivedBy, Note: req.Note}
	if err := h.deliveryService.Complete(c.Request.Context(), principal, id, input); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "delivered"}))
}

func (h *Handler) cancelDelivery(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid delivery id"))
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.deliveryService.Cancel(c.Request.Context(), principal, id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "cancelled"}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var ruleErr *eligibility.RuleError
	if errors.As(err, &ruleErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": ruleErr.Message,
			"code":  ruleErr.Code,
		})
		return
	}

	switch err {
	case service.ErrPermissionDenied:
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case service.ErrConflict:
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case service.ErrInvalidStatus:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.ErrDailyLimitReached:
		c.JSON(http.StatusTooManyRequests, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseDeliveryQuery(c *gin.Context) (service.ListDeliveriesOptions, error) {
	var opts service.ListDeliveriesOptions

	if statusParam := c.Query("status"); statusParam != "" {
		for _, val := range splitCSV(statusParam) {
			opts.Statuses = append(opts.Statuses, model.DeliveryStatus(strings.ToUpper(val)))
		}
	}
	if vehicleID := strings.TrimSpace(c.Query("vehicle_id")); vehicleID != "" {
		id, err := uuid.Parse(vehicleID)
		if err != nil {
			return opts, err
		}
		opts.VehicleID = &id
	}
	if districtID := strings.TrimSpace(c.Query("district_id")); districtID != "" {
		id, err := uuid.Parse(districtID)
		if err != nil {
			return opts, err
		}
		opts.DistrictID = &id
	}
	if dateFrom := strings.TrimSpace(c.Query("date_from")); dateFrom != "" {
		ts, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return opts, err
		}
		opts.DateFrom = &ts
	}
	if dateTo := strings.TrimSpace(c.Query("date_to")); dateTo != "" {
		ts, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return opts, err
		}
		opts.DateTo = &ts
	}
	if limit := strings.TrimSpace(c.Query("limit")); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			opts.Limit = v
		}
	}
	if offset := strings.TrimSpace(c.Query("offset")); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			opts.Offset = v
		}
	}

	opts.Search = strings.TrimSpace(c.Query("search"))

	return opts, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
