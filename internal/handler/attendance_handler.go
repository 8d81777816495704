package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/internal/service"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
	"github.com/ddelizo/sis-api/pkg/response"
)

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service  *service.AttendanceService
	students *service.StudentService
	parents  *service.ParentService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, students *service.StudentService, parents *service.ParentService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, students: students, parents: parents}
}

// List godoc
// @Summary List attendance
// @Description List attendance records with joined names, newest first
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param subject_id query string false "Filter by subject"
// @Param date_from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param date_to query string false "Inclusive end date (YYYY-MM-DD)"
// @Param limit query int false "Row limit"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
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

	if ok, err := h.scopeToViewer(c, claims, &filter.StudentID); err != nil {
		response.Error(c, err)
		return
	} else if !ok {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	records, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, nil)
}

// Create godoc
// @Summary Record attendance
// @Description Record attendance for a student on a given date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.AttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	att, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, att)
}

// Delete godoc
// @Summary Delete attendance
// @Description Remove a mistaken attendance row. Teachers may only remove rows they recorded.
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, claims.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *AttendanceHandler) scopeToViewer(c *gin.Context, claims *models.JWTClaims, studentID *string) (bool, error) {
	switch claims.Role {
	case models.RoleAdmin, models.RoleTeacher:
		return true, nil
	case models.RoleStudent:
		student, err := h.students.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			return false, err
		}
		*studentID = student.ID
		return true, nil
	case models.RoleParent:
		if *studentID == "" {
			return false, nil
		}
		return h.parents.CanView(c.Request.Context(), claims.UserID, *studentID)
	default:
		return false, nil
	}
}
