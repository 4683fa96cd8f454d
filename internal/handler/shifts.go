package handler

import (
	"context"
	"net/http"

	"fuelstation/internal/dto"
	"fuelstation/internal/middleware"
	"fuelstation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShiftsHandler struct{ svc service.ShiftService }

func NewShiftsHandler(svc service.ShiftService) *ShiftsHandler { return &ShiftsHandler{svc: svc} }

// Create godoc
// @Summary Create a draft shift
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateShiftRequest true "Station, type and date"
// @Success 201 {object} dto.ShiftResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/shifts [post]
func (h *ShiftsHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Shift with its lines and summary
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {object} dto.ShiftResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id} [get]
func (h *ShiftsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateEntries godoc
// @Summary Replace the shift's entry lines
// @Tags shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Param body body dto.ShiftEntriesRequest true "Line categories to replace"
// @Success 200 {object} dto.ShiftResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/shifts/{id}/entries [put]
func (h *ShiftsHandler) UpdateEntries(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ShiftEntriesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateEntries(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type shiftAction func(ctx context.Context, id uuid.UUID, actor service.Actor) (*dto.ShiftResponse, error)

// Action runs one lifecycle action on behalf of the authenticated employee.
//
// @Summary Run a lifecycle action
// @Tags shifts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {object} dto.ShiftResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/shifts/{id}/{action} [post]
func (h *ShiftsHandler) Action(fn shiftAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		resp, err := fn(c.Request.Context(), id, middleware.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Register mounts the shift routes on g. Approval actions are limited to
// accountants.
func (h *ShiftsHandler) Register(g *gin.RouterGroup, accountant gin.HandlerFunc) {
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id/entries", h.UpdateEntries)

	g.POST("/:id/start", h.Action(h.svc.Start))
	g.POST("/:id/skip-starting-warning", h.Action(h.svc.SkipStartingWarning))
	g.POST("/:id/compute", h.Action(h.svc.Compute))
	g.POST("/:id/done", h.Action(h.svc.Done))
	g.POST("/:id/request-approval", h.Action(h.svc.RequestApproval))
	g.POST("/:id/approve", accountant, h.Action(h.svc.Approve))
	g.POST("/:id/reject", accountant, h.Action(h.svc.Reject))
	g.POST("/:id/post", h.Action(h.svc.Post))
	g.POST("/:id/cancel", h.Action(h.svc.Cancel))
	g.POST("/:id/draft", h.Action(h.svc.Draft))
}

// History godoc
// @Summary Shift history slots of a station
// @Tags stations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Station ID"
// @Param from query string true "YYYY-MM-DD"
// @Param to query string true "YYYY-MM-DD"
// @Success 200 {array} dto.ShiftHistoryResponse
// @Router /v1/stations/{id}/history [get]
func (h *ShiftsHandler) History(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var q dto.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	from, to := dateRange(q.From, q.To)
	resp, err := h.svc.History(c.Request.Context(), id, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
