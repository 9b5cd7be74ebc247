package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/export"
)

const (
	// MaxExportRows caps unpaged exports.
	MaxExportRows   = 10000
	suggestionLimit = 5
)

type internSearchStore interface {
	Search(ctx context.Context, spec search.Spec, page search.Pageable) ([]models.Intern, int, error)
	FindAll(ctx context.Context, spec search.Spec, limit int) ([]models.Intern, error)
	DistinctValues(ctx context.Context, field search.Field) ([]string, error)
	Suggest(ctx context.Context, field search.Field, query string, limit int) ([]string, error)
	Statistics(ctx context.Context, today time.Time) (*models.InternStatistics, error)
}

// PageRequest is raw paging input; it is validated by search.NewPageable.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// SearchService runs filtered intern searches and the related metadata lookups.
type SearchService struct {
	repo    internSearchStore
	cache   *CacheService
	metrics *MetricsService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	now     func() time.Time
}

// NewSearchService constructs a SearchService.
func NewSearchService(repo internSearchStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Search returns one page of interns matching every supplied criterion.
func (s *SearchService) Search(ctx context.Context, criteria search.Criteria, req PageRequest) ([]dto.InternSummary, *models.Pagination, error) {
	page, err := search.NewPageable(req.Page, req.Size, req.SortBy, req.Direction)
	if err != nil {
		return nil, nil, err
	}
	spec, err := search.FromCriteria(criteria)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	interns, total, err := s.repo.Search(ctx, spec, page)
	s.metrics.ObserveDBQuery("interns.search", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search interns")
	}

	s.logger.Debug("intern search", zap.Int("filters", len(spec.Filters())), zap.Int("total", total))
	return dto.NewInternSummaries(interns), models.NewPagination(page.Page, page.Size, total), nil
}

// FilterOptions lists the distinct values offered by the search form.
func (s *SearchService) FilterOptions(ctx context.Context) (*models.InternFilterOptions, error) {
	var opts models.InternFilterOptions
	_, err := s.cache.Remember(ctx, filterOptionsCacheKey, &opts, func() error {
		fields := []struct {
			field search.Field
			dest  *[]string
		}{
			{search.FieldDepartment, &opts.Departments},
			{search.FieldUniversity, &opts.Universities},
			{search.FieldMajor, &opts.Majors},
			{search.FieldSupervisor, &opts.Supervisors},
		}
		for _, f := range fields {
			values, err := s.repo.DistinctValues(ctx, f.field)
			if err != nil {
				return err
			}
			if values == nil {
				values = []string{}
			}
			*f.dest = values
		}
		opts.Statuses = append([]models.InternStatus(nil), models.InternStatuses...)
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load filter options")
	}
	return &opts, nil
}

// Statistics aggregates intern counts for the dashboard.
func (s *SearchService) Statistics(ctx context.Context) (*models.InternStatistics, error) {
	var stats models.InternStatistics
	_, err := s.cache.Remember(ctx, internStatisticsCacheKey, &stats, func() error {
		loaded, err := s.repo.Statistics(ctx, s.now())
		if err != nil {
			return err
		}
		stats = *loaded
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
	}
	return &stats, nil
}

// Suggestions returns up to five values per dimension containing the query. A blank query yields an empty map.
func (s *SearchService) Suggestions(ctx context.Context, query string) (map[string][]string, error) {
	out := map[string][]string{}
	query = strings.TrimSpace(query)
	if query == "" {
		return out, nil
	}

	dimensions := []struct {
		key   string
		field search.Field
	}{
		{"departments", search.FieldDepartment},
		{"universities", search.FieldUniversity},
		{"majors", search.FieldMajor},
		{"supervisors", search.FieldSupervisor},
	}
	for _, d := range dimensions {
		values, err := s.repo.Suggest(ctx, d.field, query, suggestionLimit)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suggestions")
		}
		if len(values) > 0 {
			out[d.key] = values
		}
	}
	return out, nil
}

// Export renders every matching intern (up to MaxExportRows) as CSV or PDF.
func (s *SearchService) Export(ctx context.Context, criteria search.Criteria, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrInvalidQuery, fmt.Sprintf("unsupported export format %q", format))
	}

	spec, err := search.FromCriteria(criteria)
	if err != nil {
		return nil, err
	}
	interns, err := s.repo.FindAll(ctx, spec, MaxExportRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interns for export")
	}

	dataset := internDataset(interns)
	stamp := s.now().Format("20060102-150405")

	var file ExportFile
	switch format {
	case "pdf":
		file.Data, err = s.pdf.Render(dataset, "Interns")
		file.ContentType = "application/pdf"
	default:
		file.Data, err = s.csv.Render(dataset)
		file.ContentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	file.Filename = fmt.Sprintf("interns-%s.%s", stamp, format)
	file.Rows = len(interns)
	return &file, nil
}

var exportHeaders = []string{"First Name", "Last Name", "Email", "Phone", "University", "Major", "Department", "Supervisor", "Status", "Start Date", "End Date"}

func internDataset(interns []models.Intern) export.Dataset {
	rows := make([]map[string]string, 0, len(interns))
	for _, in := range interns {
		rows = append(rows, map[string]string{
			"First Name": in.FirstName,
			"Last Name":  in.LastName,
			"Email":      in.Email,
			"Phone":      in.Phone,
			"University": in.University,
			"Major":      in.Major,
			"Department": in.Department,
			"Supervisor": in.Supervisor,
			"Status":     string(in.Status),
			"Start Date": in.StartDate.Format(dto.DateLayout),
			"End Date":   in.EndDate.Format(dto.DateLayout),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
