package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

type internService interface {
	List(ctx context.Context, req service.PageRequest) ([]dto.InternSummary, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Intern, error)
	My(ctx context.Context, actor *models.User) (*models.Intern, error)
	Update(ctx context.Context, id string, req dto.UpdateInternRequest) (*models.Intern, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateInternStatusRequest, actor *models.User) (*models.Intern, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, status string) (int, error)
	ActiveCount(ctx context.Context) (int, error)
	UpcomingEndCount(ctx context.Context) (int, error)
}

type provisioningService interface {
	CreateIntern(ctx context.Context, rec dto.InternRecord, actor *models.User) (*dto.CreateInternResult, error)
	CreateBatch(ctx context.Context, records []dto.InternRecord, actor *models.User) (*dto.BatchResult, error)
	ImportSpreadsheet(ctx context.Context, r io.Reader, filename string, actor *models.User) (*dto.BatchResult, error)
	ResendWelcome(ctx context.Context, internID string, actor *models.User) (*dto.NotificationOutcome, error)
}

// InternHandler exposes intern records and batch provisioning.
type InternHandler struct {
	interns        internService
	provisioning   provisioningService
	maxUploadBytes int64
}

// NewInternHandler builds an InternHandler. maxUploadBytes bounds spreadsheet uploads.
func NewInternHandler(interns internService, provisioning provisioningService, maxUploadBytes int64) *InternHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &InternHandler{interns: interns, provisioning: provisioning, maxUploadBytes: maxUploadBytes}
}

// List godoc
// @Summary List interns
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (0-based)"
// @Param size query int false "Page size (max 100)"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /interns [get]
func (h *InternHandler) List(c *gin.Context) {
	req, err := pageRequestFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.interns.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get intern
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [get]
func (h *InternHandler) Get(c *gin.Context) {
	intern, err := h.interns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// My godoc
// @Summary Get the caller's intern profile
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/my [get]
func (h *InternHandler) My(c *gin.Context) {
	intern, err := h.interns.My(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Create godoc
// @Summary Register one intern
// @Description Creates the intern with a login account and sends the welcome email and notification.
// @Tags Interns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.InternRecord true "Intern"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /interns [post]
func (h *InternHandler) Create(c *gin.Context) {
	var rec dto.InternRecord
	if !bindJSON(c, &rec, "intern") {
		return
	}
	res, err := h.provisioning.CreateIntern(c.Request.Context(), rec, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// CreateBatch godoc
// @Summary Register a batch of interns
// @Description All records are persisted or none are. Welcome delivery is reported per record.
// @Tags Interns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateBatchRequest true "Interns"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /interns/batch [post]
func (h *InternHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateBatchRequest
	if !bindJSON(c, &req, "batch") {
		return
	}
	res, err := h.provisioning.CreateBatch(c.Request.Context(), req.Interns, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// UploadBatch godoc
// @Summary Register interns from a spreadsheet
// @Tags Interns
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx or csv file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /interns/batch/upload [post]
func (h *InternHandler) UploadBatch(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uploaded file is too large"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "a spreadsheet must be uploaded in the file field"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "uploaded file could not be read"))
		return
	}
	defer file.Close()

	res, err := h.provisioning.ImportSpreadsheet(c.Request.Context(), file, header.Filename, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// ResendWelcome godoc
// @Summary Retry the welcome notification
// @Description Issues a fresh temporary password and re-sends the welcome pair to an intern who has not received it.
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns/{id}/welcome [post]
func (h *InternHandler) ResendWelcome(c *gin.Context) {
	outcome, err := h.provisioning.ResendWelcome(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Update godoc
// @Summary Update intern
// @Tags Interns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Param payload body dto.UpdateInternRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns/{id} [patch]
func (h *InternHandler) Update(c *gin.Context) {
	var req dto.UpdateInternRequest
	if !bindJSON(c, &req, "intern") {
		return
	}
	intern, err := h.interns.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// UpdateStatus godoc
// @Summary Change intern status
// @Tags Interns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Param payload body dto.UpdateInternStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id}/status [patch]
func (h *InternHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateInternStatusRequest
	if !bindJSON(c, &req, "status") {
		return
	}
	intern, err := h.interns.UpdateStatus(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, intern, nil)
}

// Delete godoc
// @Summary Delete intern
// @Tags Interns
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [delete]
func (h *InternHandler) Delete(c *gin.Context) {
	if err := h.interns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Count godoc
// @Summary Count interns
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Param status query string false "ACTIVE, COMPLETED or TERMINATED"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /interns/count [get]
func (h *InternHandler) Count(c *gin.Context) {
	count, err := h.interns.Count(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// ActiveCount godoc
// @Summary Count ACTIVE interns
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /interns/active/count [get]
func (h *InternHandler) ActiveCount(c *gin.Context) {
	count, err := h.interns.ActiveCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// UpcomingEndCount godoc
// @Summary Count ACTIVE interns ending within 30 days
// @Tags Interns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /interns/upcoming-end-dates/count [get]
func (h *InternHandler) UpcomingEndCount(c *gin.Context) {
	count, err := h.interns.UpcomingEndCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}
