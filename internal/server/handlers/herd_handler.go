package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/care"
	"github.com/mamadbah2/herdcare/internal/domain/models"
	"github.com/mamadbah2/herdcare/internal/service/herd"
	"github.com/mamadbah2/herdcare/internal/service/reporting"
	"github.com/mamadbah2/herdcare/pkg/dates"
)

// HerdService is the herd API surface served over HTTP.
type HerdService interface {
	GoatDueInfo(ctx context.Context, tag string) (herd.GoatDue, error)
	GoatTags(ctx context.Context, tag string) ([]models.Tag, error)
	ReadyDoes(ctx context.Context) ([]care.ReadyDoe, error)
	CalendarFeed(ctx context.Context, from, to time.Time) (care.Feed, error)
	Dashboard(ctx context.Context) (herd.Dashboard, error)
	RecordVaccination(ctx context.Context, req herd.RecordRequest) (models.VaccinationEvent, error)
	BatchRecordVaccination(ctx context.Context, req herd.BatchRequest) (herd.BatchResult, error)
	RescheduleVaccination(ctx context.Context, tag string, vaccineTypeID int64, newDate time.Time, by string) (models.VaccinationEvent, error)
	MarkRecovered(ctx context.Context, tag string) (int, error)
	RecordSickness(ctx context.Context, tag, condition, medicine string) (models.Sickness, error)
	UpdateWeight(ctx context.Context, tag string, weight float64) (models.Goat, error)
}

// ReportService provides the vaccination reports.
type ReportService interface {
	OverdueReport(ctx context.Context) ([]reporting.OverdueRow, error)
	ComplianceReport(ctx context.Context) ([]reporting.Compliance, error)
	History(ctx context.Context, since time.Time) ([]models.HerdReport, error)
}

// HerdHandler serves the herd care JSON API.
type HerdHandler struct {
	herd    HerdService
	reports ReportService
	logger  *zap.Logger
}

// NewHerdHandler constructs the HTTP handler adapter.
func NewHerdHandler(herdSvc HerdService, reports ReportService, logger *zap.Logger) *HerdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HerdHandler{herd: herdSvc, reports: reports, logger: logger}
}

// GoatVaccines returns the vaccination schedule of a goat.
func (h *HerdHandler) GoatVaccines(c *gin.Context) {
	due, err := h.herd.GoatDueInfo(c.Request.Context(), c.Param("tag"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, due)
}

// GoatTags returns the derived status tags of a goat.
func (h *HerdHandler) GoatTags(c *gin.Context) {
	tag := c.Param("tag")
	tags, err := h.herd.GoatTags(c.Request.Context(), tag)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "tags": tags})
}

type recordVaccinationRequest struct {
	ScheduledDate string `json:"scheduled_date"`
	GivenOn       string `json:"given_on"`
	Notes         string `json:"notes"`
	BatchNumber   string `json:"batch_number"`
	GivenBy       string `json:"given_by"`
}

// RecordVaccination records or schedules a dose.
func (h *HerdHandler) RecordVaccination(c *gin.Context) {
	vaccineTypeID, ok := vaccineTypeParam(c)
	if !ok {
		return
	}
	var body recordVaccinationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	req := herd.RecordRequest{
		Tag:           c.Param("tag"),
		VaccineTypeID: vaccineTypeID,
		Notes:         body.Notes,
		BatchNumber:   body.BatchNumber,
		GivenBy:       body.GivenBy,
	}
	var err error
	if req.ScheduledDate, err = optionalDate("scheduled_date", body.ScheduledDate); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.GivenOn, err = optionalDate("given_on", body.GivenOn); err != nil {
		badRequest(c, err.Error())
		return
	}

	event, err := h.herd.RecordVaccination(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

type rescheduleRequest struct {
	NewDate string `json:"new_date" binding:"required"`
	By      string `json:"by"`
}

// RescheduleVaccination moves the next due dose of a vaccine to a new date.
func (h *HerdHandler) RescheduleVaccination(c *gin.Context) {
	vaccineTypeID, ok := vaccineTypeParam(c)
	if !ok {
		return
	}
	var body rescheduleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "new_date is required")
		return
	}
	newDate, err := dates.Parse(body.NewDate)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid new_date %q", body.NewDate))
		return
	}

	event, err := h.herd.RescheduleVaccination(c.Request.Context(), c.Param("tag"), vaccineTypeID, newDate, body.By)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// MarkRecovered closes the active sicknesses of a goat.
func (h *HerdHandler) MarkRecovered(c *gin.Context) {
	n, err := h.herd.MarkRecovered(c.Request.Context(), c.Param("tag"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recovered": n})
}

type sicknessRequest struct {
	Sickness string `json:"sickness" binding:"required"`
	Medicine string `json:"medicine"`
}

// RecordSickness logs an illness; the goat is tagged sick until recovered.
func (h *HerdHandler) RecordSickness(c *gin.Context) {
	var body sicknessRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "sickness is required")
		return
	}

	sickness, err := h.herd.RecordSickness(c.Request.Context(), c.Param("tag"), body.Sickness, body.Medicine)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sickness)
}

type weightRequest struct {
	Weight float64 `json:"weight" binding:"required"`
}

// UpdateWeight records a new weighing in kg.
func (h *HerdHandler) UpdateWeight(c *gin.Context) {
	var body weightRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "weight is required")
		return
	}

	goat, err := h.herd.UpdateWeight(c.Request.Context(), c.Param("tag"), body.Weight)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, goat)
}

type batchRequest struct {
	VaccineTypeID int64    `json:"vaccine_type_id" binding:"required"`
	Tags          []string `json:"tags" binding:"required"`
	GivenOn       string   `json:"given_on"`
	Notes         string   `json:"notes"`
	BatchNumber   string   `json:"batch_number"`
	GivenBy       string   `json:"given_by"`
}

// BatchRecordVaccination records the same dose for several goats.
func (h *HerdHandler) BatchRecordVaccination(c *gin.Context) {
	var body batchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "vaccine_type_id and tags are required")
		return
	}
	givenOn, err := optionalDate("given_on", body.GivenOn)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.herd.BatchRecordVaccination(c.Request.Context(), herd.BatchRequest{
		VaccineTypeID: body.VaccineTypeID,
		Tags:          body.Tags,
		GivenOn:       givenOn,
		Notes:         body.Notes,
		BatchNumber:   body.BatchNumber,
		GivenBy:       body.GivenBy,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReadyDoes lists does available for mating.
func (h *HerdHandler) ReadyDoes(c *gin.Context) {
	does, err := h.herd.ReadyDoes(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if does == nil {
		does = []care.ReadyDoe{}
	}
	c.JSON(http.StatusOK, does)
}

// CalendarEvents serves the merged calendar feed for ?start=&end=.
func (h *HerdHandler) CalendarEvents(c *gin.Context) {
	var from, to time.Time
	if v := c.Query("start"); v != "" {
		t, err := dates.Parse(v)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid start %q", v))
			return
		}
		from = t
	}
	if v := c.Query("end"); v != "" {
		t, err := dates.Parse(v)
		if err != nil {
			badRequest(c, fmt.Sprintf("invalid end %q", v))
			return
		}
		to = t
	}

	feed, err := h.herd.CalendarFeed(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// Dashboard returns the herd overview.
func (h *HerdHandler) Dashboard(c *gin.Context) {
	board, err := h.herd.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// OverdueReport lists overdue vaccinations.
func (h *HerdHandler) OverdueReport(c *gin.Context) {
	rows, err := h.reports.OverdueReport(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ComplianceReport returns the per-vaccine compliance figures.
func (h *HerdHandler) ComplianceReport(c *gin.Context) {
	report, err := h.reports.ComplianceReport(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReportHistory returns the daily herd snapshots, optionally from ?since onwards.
func (h *HerdHandler) ReportHistory(c *gin.Context) {
	since, err := optionalDate("since", c.Query("since"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	var from time.Time
	if since != nil {
		from = *since
	}

	history, err := h.reports.History(c.Request.Context(), from)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if history == nil {
		history = []models.HerdReport{}
	}
	c.JSON(http.StatusOK, history)
}

func vaccineTypeParam(c *gin.Context) (int64, bool) {
	raw := c.Param("vaccineTypeID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, fmt.Sprintf("invalid vaccine type id %q", raw))
		return 0, false
	}
	return id, true
}

func optionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := dates.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", field, value)
	}
	return &t, nil
}
