package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/internal/service"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
	"github.com/ddelizo/sis-api/pkg/export"
	"github.com/ddelizo/sis-api/pkg/response"
)

// ReportHandler serves report downloads in JSON, CSV and PDF form.
type ReportHandler struct {
	service *service.ReportService
	metrics *service.MetricsService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{service: svc, metrics: metrics}
}

// Students godoc
// @Summary Students report
// @Description Tabular students report as JSON, CSV or PDF
// @Tags Reports
// @Produce json
// @Param format query string false "json, csv or pdf (default json)"
// @Param status query string false "Filter by student status"
// @Success 200 {object} response.Envelope
// @Router /reports/students [get]
func (h *ReportHandler) Students(c *gin.Context) {
	filter := models.StudentFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		st := models.StudentStatus(status)
		filter.Status = &st
	}
	filter.PageSize, _ = strconv.Atoi(c.Query("limit"))

	dataset, err := h.service.StudentsDataset(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respond(c, "students", service.StudentsReportFilename, "Students Report", dataset)
}

// Grades godoc
// @Summary Grades report
// @Description Tabular grades report as JSON, CSV or PDF
// @Tags Reports
// @Produce json
// @Param format query string false "json, csv or pdf (default json)"
// @Param school_year query string false "Filter by school year"
// @Success 200 {object} response.Envelope
// @Router /reports/grades [get]
func (h *ReportHandler) Grades(c *gin.Context) {
	filter := models.GradeFilter{
		StudentID:  c.Query("student_id"),
		SubjectID:  c.Query("subject_id"),
		SchoolYear: c.Query("school_year"),
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	dataset, err := h.service.GradesDataset(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respond(c, "grades", service.GradesReportFilename, "Grades Report", dataset)
}

// Attendance godoc
// @Summary Attendance report
// @Description Tabular attendance report as JSON, CSV or PDF. Row caps depend on the requester's role.
// @Tags Reports
// @Produce json
// @Param format query string false "json, csv or pdf (default json)"
// @Param date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param date_to query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.AttendanceFilter{
		StudentID: c.Query("student_id"),
		SubjectID: c.Query("subject_id"),
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	if from := c.Query("date_from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if to := c.Query("date_to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &parsed
		}
	}

	dataset, err := h.service.AttendanceDataset(c.Request.Context(), claims.Role, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.respond(c, "attendance", service.AttendanceReportFilename, "Attendance Report", dataset)
}

// respond writes the dataset in the requested format. JSON returns the
// headers and rows in the standard envelope; csv and pdf stream an
// attachment with a fixed filename.
func (h *ReportHandler) respond(c *gin.Context, kind, csvFilename, title string, dataset export.Dataset) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	h.metrics.RecordReportDownload(kind, format)

	switch format {
	case "json", "":
		response.JSON(c, http.StatusOK, dataset, nil)
	case "csv":
		payload, err := h.service.RenderCSV(dataset)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "text/csv", csvFilename, payload)
	case "pdf":
		payload, err := h.service.RenderPDF(dataset, title)
		if err != nil {
			response.Error(c, err)
			return
		}
		filename := strings.TrimSuffix(csvFilename, ".csv") + ".pdf"
		response.File(c, "application/pdf", filename, payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be json, csv or pdf"))
	}
}
