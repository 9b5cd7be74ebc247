package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

type documentService interface {
	Upload(ctx context.Context, actor *models.User, in dto.DocumentUpload) (*models.Document, error)
	ListMine(ctx context.Context, actor *models.User, req service.PageRequest) ([]models.Document, *models.Pagination, error)
	ListAll(ctx context.Context, req service.PageRequest) ([]models.Document, *models.Pagination, error)
	Open(ctx context.Context, actor *models.User, id string) (*models.Document, io.ReadCloser, error)
	Link(ctx context.Context, actor *models.User, id string) (*dto.DocumentLink, error)
	OpenSigned(ctx context.Context, token string) (*models.Document, io.ReadCloser, error)
}

// DocumentHandler exposes intern document upload and download.
type DocumentHandler struct {
	service  documentService
	maxBytes int64
	linkBase string
}

// NewDocumentHandler builds a DocumentHandler. maxBytes bounds uploads and linkBase prefixes
// signed download tokens, for example "/api/v1/files/".
func NewDocumentHandler(svc documentService, maxBytes int64, linkBase string) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &DocumentHandler{service: svc, maxBytes: maxBytes, linkBase: linkBase}
}

// Upload godoc
// @Summary Upload a document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document"
// @Param type formData string false "REPORT, CERTIFICATE, CV or OTHER"
// @Param comment formData string false "Comment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	// multipart framing needs room beyond the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+64<<10)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uploaded file is too large"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "a document must be uploaded in the file field"))
		return
	}
	if header.Size > h.maxBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uploaded file is too large"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "uploaded file could not be read"))
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), actorFromContext(c), dto.DocumentUpload{
		Type:        c.PostForm("type"),
		Comment:     c.PostForm("comment"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// My godoc
// @Summary List the caller's documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /documents/my [get]
func (h *DocumentHandler) My(c *gin.Context) {
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
// @Summary List every document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
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

// Download godoc
// @Summary Download a document
// @Description HR users may download any document; interns only their own.
// @Tags Documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, content, err := h.service.Open(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer content.Close()
	response.Stream(c, doc.OriginalFileName, doc.MimeType, doc.FileSize, content)
}

// Link godoc
// @Summary Issue a temporary download link
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /documents/{id}/link [post]
func (h *DocumentHandler) Link(c *gin.Context) {
	link, err := h.service.Link(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	link.URL = strings.TrimSuffix(h.linkBase, "/") + "/" + link.Token
	response.JSON(c, http.StatusOK, link, nil)
}

// Signed godoc
// @Summary Download a document through a signed link
// @Tags Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /files/{token} [get]
func (h *DocumentHandler) Signed(c *gin.Context) {
	doc, content, err := h.service.OpenSigned(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer content.Close()
	response.Stream(c, doc.OriginalFileName, doc.MimeType, doc.FileSize, content)
}
