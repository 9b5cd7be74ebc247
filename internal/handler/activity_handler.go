package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

type activityService interface {
	Create(ctx context.Context, actor *models.User, req dto.CreateActivityRequest) (*models.Activity, error)
	ListMine(ctx context.Context, actor *models.User, req service.PageRequest) ([]models.Activity, *models.Pagination, error)
	ListAll(ctx context.Context, req service.PageRequest) ([]models.Activity, *models.Pagination, error)
}

// ActivityHandler exposes the intern activity log.
type ActivityHandler struct {
	service activityService
}

// NewActivityHandler builds an ActivityHandler.
func NewActivityHandler(svc activityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// Create godoc
// @Summary Log today's activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateActivityRequest true "Activity"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req dto.CreateActivityRequest
	if !bindJSON(c, &req, "activity") {
		return
	}
	activity, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// My godoc
// @Summary List the caller's activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (0-based)"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /activities/my [get]
func (h *ActivityHandler) My(c *gin.Context) {
	req, err := pageRequestFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.ListMine(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// List godoc
// @Summary List every intern's activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (0-based)"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	req, err := pageRequestFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.ListAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
