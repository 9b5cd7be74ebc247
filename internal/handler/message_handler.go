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

type messageService interface {
	SendToIntern(ctx context.Context, internID string, req dto.MessageRequest, actor *models.User) (*dto.MessageOutcome, error)
	SendToMany(ctx context.Context, req dto.BatchMessageRequest, actor *models.User) (*dto.MessageBatchResult, error)
	SendToAllActive(ctx context.Context, req dto.MessageRequest, actor *models.User) (*dto.MessageBatchResult, error)
	SendToHR(ctx context.Context, req dto.MessageRequest, actor *models.User) (*dto.MessageOutcome, error)
	ListMine(ctx context.Context, actor *models.User, req service.PageRequest) ([]models.Message, *models.Pagination, error)
	MarkRead(ctx context.Context, actor *models.User, id string) error
	UnreadCount(ctx context.Context, actor *models.User) (int, error)
}

// MessageHandler exposes messaging between HR and interns.
type MessageHandler struct {
	service messageService
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(svc messageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// SendToIntern godoc
// @Summary Message one intern
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Param payload body dto.MessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /interns/{id}/message [post]
func (h *MessageHandler) SendToIntern(c *gin.Context) {
	var req dto.MessageRequest
	if !bindJSON(c, &req, "message") {
		return
	}
	outcome, err := h.service.SendToIntern(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// SendToMany godoc
// @Summary Message several interns
// @Description Each recipient gets its own outcome; one failure does not stop the others.
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BatchMessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Router /interns/message/batch [post]
func (h *MessageHandler) SendToMany(c *gin.Context) {
	var req dto.BatchMessageRequest
	if !bindJSON(c, &req, "message") {
		return
	}
	res, err := h.service.SendToMany(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SendToAll godoc
// @Summary Message every active intern
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Router /interns/message/all [post]
func (h *MessageHandler) SendToAll(c *gin.Context) {
	var req dto.MessageRequest
	if !bindJSON(c, &req, "message") {
		return
	}
	res, err := h.service.SendToAllActive(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SendToHR godoc
// @Summary Message the caller's HR contact
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MessageRequest true "Message"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /messages/hr [post]
func (h *MessageHandler) SendToHR(c *gin.Context) {
	var req dto.MessageRequest
	if !bindJSON(c, &req, "message") {
		return
	}
	outcome, err := h.service.SendToHR(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// My godoc
// @Summary The caller's message history
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (0-based)"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /messages/my [get]
func (h *MessageHandler) My(c *gin.Context) {
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

// UnreadCount godoc
// @Summary Unread message count
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// MarkRead godoc
// @Summary Mark a received message read
// @Tags Messages
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /messages/{id}/read [patch]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
