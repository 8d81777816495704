package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/internal/service"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
	"github.com/ddelizo/sis-api/pkg/response"
)

// ParentHandler wires HTTP endpoints to the parent service.
type ParentHandler struct {
	service *service.ParentService
}

// NewParentHandler creates a new handler.
func NewParentHandler(svc *service.ParentService) *ParentHandler {
	return &ParentHandler{service: svc}
}

// Children godoc
// @Summary List linked children
// @Description List the students linked to the authenticated parent account
// @Tags Parents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parents/children [get]
func (h *ParentHandler) Children(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	children, err := h.service.ListChildren(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, children, nil)
}

// ChildrenOf godoc
// @Summary List children of a parent
// @Description List the students linked to a parent account by its ID
// @Tags Parents
// @Produce json
// @Param id path string true "Parent account ID"
// @Success 200 {object} response.Envelope
// @Router /parents/{id}/children [get]
func (h *ParentHandler) ChildrenOf(c *gin.Context) {
	children, err := h.service.ListChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, children, nil)
}

// Link godoc
// @Summary Link parent to student
// @Description Connect a parent account to a student record
// @Tags Parents
// @Accept json
// @Produce json
// @Param payload body models.ParentLinkRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /parents/links [post]
func (h *ParentHandler) Link(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ParentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid link payload"))
		return
	}

	link, err := h.service.Link(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, link)
}

// Unlink godoc
// @Summary Remove parent link
// @Tags Parents
// @Produce json
// @Param id path string true "Link ID"
// @Success 204 {object} response.Envelope
// @Router /parents/links/{id} [delete]
func (h *ParentHandler) Unlink(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Unlink(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
