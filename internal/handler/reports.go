package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"fuelstation/internal/apierror"
	"fuelstation/internal/dto"
	"fuelstation/internal/infra"
	"fuelstation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type ReportsHandler struct {
	svc         service.ReportService
	storagePath string
}

func NewReportsHandler(svc service.ReportService, storagePath string) *ReportsHandler {
	return &ReportsHandler{svc: svc, storagePath: storagePath}
}

// DailySummary godoc
// @Summary Daily cash statement of a shift
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {object} dto.DailySummaryResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id}/daily-summary [get]
func (h *ReportsHandler) DailySummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DailySummaryPDF godoc
// @Summary Daily cash statement of a shift as PDF
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Shift ID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/shifts/{id}/daily-summary.pdf [get]
func (h *ReportsHandler) DailySummaryPDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	summary, err := h.svc.DailySummary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	path, err := infra.GenerateDailySummaryPDF(summary, h.storagePath)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// Period godoc
// @Summary Station period report as XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param type path string true "wet | cash | credit | tank_stock"
// @Param station_id query string false "Station ID (required except for credit)"
// @Param from query string true "YYYY-MM-DD"
// @Param to query string true "YYYY-MM-DD"
// @Success 200 {file} binary
// @Failure 422 {object} apierror.APIError
// @Router /v1/reports/{type} [get]
func (h *ReportsHandler) Period(c *gin.Context) {
	var q dto.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	from, to := dateRange(q.From, q.To)
	if to.Before(from) {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("to must not be before from"))
		return
	}
	var stationID *uuid.UUID
	if q.StationID != "" {
		id := uuid.MustParse(q.StationID)
		stationID = &id
	}

	kind := c.Param("type")
	if kind != "credit" && stationID == nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("station_id is required for this report"))
		return
	}

	ctx := c.Request.Context()
	var (
		f   *excelize.File
		err error
	)
	switch kind {
	case "wet":
		var tanks []dto.WetSummaryTank
		if tanks, err = h.svc.WetSummary(ctx, *stationID, from, to); err == nil {
			f, err = infra.WetSummaryWorkbook(tanks)
		}
	case "cash":
		var rows []dto.CashSummaryRow
		if rows, err = h.svc.CashSummary(ctx, *stationID, from, to); err == nil {
			f, err = infra.CashSummaryWorkbook(rows)
		}
	case "credit":
		var rows []dto.CreditSummaryRow
		if rows, err = h.svc.CreditSummary(ctx, stationID, from, to); err == nil {
			f, err = infra.CreditSummaryWorkbook(rows)
		}
	case "tank_stock":
		var rows []dto.TankStockRow
		if rows, err = h.svc.TankStock(ctx, *stationID, from, to); err == nil {
			f, err = infra.TankStockWorkbook(rows)
		}
	default:
		c.JSON(http.StatusNotFound, apierror.New("Unknown report "+kind))
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	name := fmt.Sprintf("%s_summary_%s_%s.xlsx", kind, q.From, q.To)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", infra.XLSXContentType)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
