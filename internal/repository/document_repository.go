package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
)

const documentColumns = `d.id, d.intern_id, TRIM(i.first_name || ' ' || i.last_name) AS intern_name, d.file_name,
        d.original_file_name, d.mime_type, d.file_size, d.file_path, d.type, d.comment, d.uploaded_at`

// DocumentRepository stores metadata for uploaded documents. File contents live in storage.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts document metadata.
func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documents (id, intern_id, file_name, original_file_name, mime_type, file_size, file_path, type, comment, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, d.ID, d.InternID, d.FileName, d.OriginalFileName, d.MimeType, d.FileSize, d.FilePath, d.Type, d.Comment, d.UploadedAt); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// FindByID fetches a document by ID.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM documents d JOIN interns i ON i.id = d.intern_id WHERE d.id = $1", documentColumns)
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

// List pages documents, newest upload first. A blank internID lists every intern's documents.
func (r *DocumentRepository) List(ctx context.Context, internID string, page search.Pageable) ([]models.Document, int, error) {
	base := "FROM documents d JOIN interns i ON i.id = d.intern_id"
	var args []interface{}
	if internID != "" {
		base += " WHERE d.intern_id = $1"
		args = append(args, internID)
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY d.uploaded_at DESC, d.id LIMIT %d OFFSET %d", documentColumns, base, page.Size, page.Offset())
	items := []models.Document{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return items, total, nil
}
