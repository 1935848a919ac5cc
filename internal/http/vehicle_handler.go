package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"delivery-service/internal/http/middleware"
	"delivery-service/internal/model"
	"delivery-service/internal/repository"
	"delivery-service/internal/service"
)

func (h *Handler) listVehicles(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var filter repository.VehicleFilter
	if categoryParam := c.Query("category"); categoryParam != "" {
		for _, val := range splitCSV(categoryParam) {
			filter.Categories = append(filter.Categories, model.VehicleCategory(strings.ToUpper(val)))
		}
	}
	filter.ActiveOnly = c.Query("active") == "true"
	if districtID := strings.TrimSpace(c.Query("district_id")); districtID != "" {
		id, err := uuid.Parse(districtID)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
			return
		}
		filter.DistrictID = &id
	}

	vehicles, err := h.vehicleService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": vehicles}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	vehicle, err := h.vehicleService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) createVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Name       string `json:"name" binding:"required"`
		Category   string `json:"category" binding:"required"`
		DailyLimit int    `json:"daily_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), principal, service.CreateVehicleInput{
		Name:       req.Name,
		Category:   model.VehicleCategory(strings.ToUpper(strings.TrimSpace(req.Category))),
		DailyLimit: req.DailyLimit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	var req struct {
		Name       *string `json:"name"`
		Category   *string `json:"category"`
		DailyLimit *int    `json:"daily_limit"`
		Active     *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var input service.UpdateVehicleInput
	input.Name = req.Name
	if req.Category != nil {
		category := model.VehicleCategory(strings.ToUpper(strings.TrimSpace(*req.Category)))
		input.Category = &category
	}
	input.DailyLimit = req.DailyLimit
	input.Active = req.Active

	vehicle, err := h.vehicleService.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) suggestVehicles(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	districtID, err := uuid.Parse(strings.TrimSpace(c.Query("district_id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid district_id"))
		return
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(c.Query("date")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	suggestions, err := h.vehicleService.Suggest(c.Request.Context(), principal, districtID, date)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": suggestions}))
}

func (h *Handler) listClosures(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var vehicleID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("vehicle_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
			return
		}
		vehicleID = &id
	}
	activeOnly := c.Query("active") == "true"

	closures, err := h.vehicleService.ListClosures(c.Request.Context(), principal, vehicleID, activeOnly)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": closures}))
}

func (h *Handler) createClosure(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		VehicleID   string `json:"vehicle_id" binding:"required"`
		StartDate   string `json:"start_date" binding:"required"`
		EndDate     string `json:"end_date" binding:"required"`
		Reason      string `json:"reason" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicleID, err := uuid.Parse(strings.TrimSpace(req.VehicleID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid start_date, expected YYYY-MM-DD"))
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid end_date, expected YYYY-MM-DD"))
		return
	}

	closure, err := h.vehicleService.Close(c.Request.Context(), principal, service.CreateClosureInput{
		VehicleID:   vehicleID,
		StartDate:   start,
		EndDate:     end,
		Reason:      model.ClosureReason(strings.ToUpper(strings.TrimSpace(req.Reason))),
		Description: req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(closure))
}

func (h *Handler) reopenClosure(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid closure id"))
		return
	}

	if err := h.vehicleService.Reopen(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "reopened"}))
}

func (h *Handler) reactivateClosure(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid closure id"))
		return
	}

	if err := h.vehicleService.Reactivate(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"status": "reactivated"}))
}
