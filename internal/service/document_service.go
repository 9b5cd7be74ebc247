package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/storage"
)

const (
	maxCommentLength  = 1000
	maxOriginalLength = 255
	defaultMimeType   = "application/octet-stream"
)

type documentStore interface {
	Create(ctx context.Context, d *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, internID string, page search.Pageable) ([]models.Document, int, error)
}

type documentFiles interface {
	SaveStream(name string, r io.Reader) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type linkSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string) (string, string, time.Time, error)
}

// DocumentService stores intern documents and guards who may read them. HR users may read
// any document; interns only their own.
type DocumentService struct {
	documents documentStore
	files     documentFiles
	signer    linkSigner
	interns   actorInternLookup
	logger    *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(documents documentStore, files documentFiles, signer linkSigner, interns actorInternLookup, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{documents: documents, files: files, signer: signer, interns: interns, logger: logger}
}

// Upload stores a document for the acting intern under a generated name.
func (s *DocumentService) Upload(ctx context.Context, actor *models.User, in dto.DocumentUpload) (*models.Document, error) {
	docType := models.DocumentType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if docType == "" {
		docType = models.DocumentOther
	}
	if !docType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be one of REPORT, CERTIFICATE, CV, OTHER")
	}
	original := strings.TrimSpace(path.Base(strings.ReplaceAll(in.FileName, `\`, "/")))
	if original == "" || original == "." || original == "/" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is required")
	}
	if len(original) > maxOriginalLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file name is too long")
	}
	comment := strings.TrimSpace(in.Comment)
	if len(comment) > maxCommentLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment is too long")
	}
	if in.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file content is required")
	}

	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 {
		ext = ""
	}
	storedName := uuid.NewString() + ext
	relPath := intern.ID + "/" + storedName

	size, err := s.files.SaveStream(relPath, in.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}
	if size == 0 {
		s.discard(relPath)
		return nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file is empty")
	}

	doc := &models.Document{
		InternID:         intern.ID,
		InternName:       intern.FullName(),
		FileName:         storedName,
		OriginalFileName: original,
		MimeType:         mimeTypeFor(in.ContentType, ext),
		FileSize:         size,
		FilePath:         relPath,
		Type:             docType,
	}
	if comment != "" {
		doc.Comment = &comment
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		s.discard(relPath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document")
	}
	s.logger.Info("document uploaded", zap.String("document_id", doc.ID), zap.String("intern_id", intern.ID), zap.Int64("size", size))
	return doc, nil
}

// ListMine pages the acting intern's documents.
func (s *DocumentService) ListMine(ctx context.Context, actor *models.User, req PageRequest) ([]models.Document, *models.Pagination, error) {
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		return nil, nil, err
	}
	return s.list(ctx, intern.ID, req)
}

// ListAll pages every document.
func (s *DocumentService) ListAll(ctx context.Context, req PageRequest) ([]models.Document, *models.Pagination, error) {
	return s.list(ctx, "", req)
}

// Open returns a document the actor may read together with its content. The caller closes it.
func (s *DocumentService) Open(ctx context.Context, actor *models.User, id string) (*models.Document, io.ReadCloser, error) {
	doc, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	return s.open(doc)
}

// Link issues a signed, time-limited download token for a document the actor may read.
func (s *DocumentService) Link(ctx context.Context, actor *models.User, id string) (*dto.DocumentLink, error) {
	doc, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &dto.DocumentLink{Token: token, ExpiresAt: expiresAt}, nil
}

// OpenSigned resolves a download token issued by Link.
func (s *DocumentService) OpenSigned(ctx context.Context, token string) (*models.Document, io.ReadCloser, error) {
	id, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "download link has expired")
		}
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	return s.open(doc)
}

func (s *DocumentService) list(ctx context.Context, internID string, req PageRequest) ([]models.Document, *models.Pagination, error) {
	page, err := search.NewPageable(req.Page, req.Size, "", "")
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.documents.List(ctx, internID, page)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return items, models.NewPagination(page.Page, page.Size, total), nil
}

func (s *DocumentService) find(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func (s *DocumentService) authorized(ctx context.Context, actor *models.User, id string) (*models.Document, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user is required")
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleHR {
		return doc, nil
	}
	intern, err := internForActor(ctx, s.interns, actor)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound.Code) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only access your own documents")
		}
		return nil, err
	}
	if intern.ID != doc.InternID {
		s.logger.Warn("document access denied", zap.String("document_id", doc.ID), zap.String("user_id", actor.ID))
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you can only access your own documents")
	}
	return doc, nil
}

func (s *DocumentService) open(doc *models.Document) (*models.Document, io.ReadCloser, error) {
	file, err := s.files.Open(doc.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document file is missing")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return doc, file, nil
}

func (s *DocumentService) discard(relPath string) {
	if err := s.files.Delete(relPath); err != nil {
		s.logger.Warn("failed to remove stored document", zap.String("path", relPath), zap.Error(err))
	}
}

func mimeTypeFor(declared, ext string) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != defaultMimeType {
		return mt
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return defaultMimeType
}
