package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

type searchService interface {
	Search(ctx context.Context, criteria search.Criteria, req service.PageRequest) ([]dto.InternSummary, *models.Pagination, error)
	FilterOptions(ctx context.Context) (*models.InternFilterOptions, error)
	Statistics(ctx context.Context) (*models.InternStatistics, error)
	Suggestions(ctx context.Context, query string) (map[string][]string, error)
	Export(ctx context.Context, criteria search.Criteria, format string) (*service.ExportFile, error)
}

// SearchHandler serves intern search and its dropdown metadata.
type SearchHandler struct {
	service searchService
}

// NewSearchHandler builds a SearchHandler.
func NewSearchHandler(svc searchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// Search godoc
// @Summary Search interns
// @Description Every supplied criterion must match. Text criteria are case-insensitive substrings; date bounds are inclusive.
// @Tags Search
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "Matches name, email, university, major, department or supervisor"
// @Param department query string false "Department"
// @Param university query string false "University"
// @Param major query string false "Major"
// @Param supervisor query string false "Supervisor"
// @Param status query string false "ACTIVE, COMPLETED or TERMINATED"
// @Param startDateFrom query string false "YYYY-MM-DD"
// @Param startDateTo query string false "YYYY-MM-DD"
// @Param endDateFrom query string false "YYYY-MM-DD"
// @Param endDateTo query string false "YYYY-MM-DD"
// @Param page query int false "Page (0-based)"
// @Param size query int false "Page size (max 100)"
// @Param sortBy query string false "Sort field"
// @Param sortDirection query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /interns/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := pageRequestFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.Search(c.Request.Context(), criteria, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Options godoc
// @Summary Search filter options
// @Tags Search
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /interns/search/options [get]
func (h *SearchHandler) Options(c *gin.Context) {
	opts, err := h.service.FilterOptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opts, nil)
}

// Statistics godoc
// @Summary Intern statistics
// @Tags Search
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /interns/search/statistics [get]
func (h *SearchHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Suggestions godoc
// @Summary Autocomplete values
// @Tags Search
// @Produce json
// @Security BearerAuth
// @Param query query string true "Partial value"
// @Success 200 {object} response.Envelope
// @Router /interns/search/suggestions [get]
func (h *SearchHandler) Suggestions(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		query = c.Query("q")
	}
	values, err := h.service.Suggestions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, values, nil)
}

// Export godoc
// @Summary Export matching interns
// @Tags Search
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /interns/search/export [get]
func (h *SearchHandler) Export(c *gin.Context) {
	criteria, err := criteriaFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), criteria, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
