package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/internal/service"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
	"github.com/ddelizo/sis-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to the grade service.
type GradeHandler struct {
	service  *service.GradeService
	students *service.StudentService
	parents  *service.ParentService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService, students *service.StudentService, parents *service.ParentService) *GradeHandler {
	return &GradeHandler{service: svc, students: students, parents: parents}
}

// List godoc
// @Summary List grades
// @Description List grade entries with joined student, subject and teacher names
// @Tags Grades
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param subject_id query string false "Filter by subject"
// @Param school_year query string false "Filter by school year"
// @Param limit query int false "Row limit"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.GradeFilter{
		StudentID:  c.Query("student_id"),
		SubjectID:  c.Query("subject_id"),
		SchoolYear: c.Query("school_year"),
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	if ok, err := h.scopeToViewer(c, claims, &filter.StudentID); err != nil {
		response.Error(c, err)
		return
	} else if !ok {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	grades, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grades, nil)
}

// Create godoc
// @Summary Encode grade
// @Description Record a quarterly grade for a student
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.GradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	grade, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, grade)
}

// Update godoc
// @Summary Correct grade
// @Description Update an existing grade entry
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body models.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	grade, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grade, nil)
}

// scopeToViewer forces student and parent callers onto records they own.
// For students the filter is pinned to their own record; parents must
// name a linked child via student_id.
func (h *GradeHandler) scopeToViewer(c *gin.Context, claims *models.JWTClaims, studentID *string) (bool, error) {
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
