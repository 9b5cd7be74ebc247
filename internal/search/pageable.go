package search

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"
)

// sortColumns maps normalised sort names (lower-case, no underscores) to columns.
var sortColumns = map[string]string{
	"id":         "id",
	"firstname":  "first_name",
	"lastname":   "last_name",
	"email":      "email",
	"university": "university",
	"major":      "major",
	"department": "department",
	"supervisor": "supervisor",
	"status":     "status",
	"startdate":  "start_date",
	"enddate":    "end_date",
	"createdat":  "created_at",
	"updatedat":  "updated_at",
}

// Pageable is a validated page request.
type Pageable struct {
	Page   int
	Size   int
	Column string
	Desc   bool
}

// NewPageable validates paging input. Blank sort inputs fall back to createdAt desc
// and sizes above MaxPageSize are capped.
func NewPageable(page, size int, sortBy, direction string) (Pageable, error) {
	if page < 0 {
		return Pageable{}, appErrors.Clone(appErrors.ErrInvalidPagination, "page must not be negative")
	}
	if size <= 0 {
		return Pageable{}, appErrors.Clone(appErrors.ErrInvalidPagination, "size must be greater than zero")
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// the last row of the page must stay addressable
	if page > math.MaxInt/size-1 {
		return Pageable{}, appErrors.Clone(appErrors.ErrInvalidPagination, "page is out of range")
	}

	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	col, ok := sortColumns[strings.ToLower(strings.ReplaceAll(sortBy, "_", ""))]
	if !ok {
		return Pageable{}, appErrors.Clone(appErrors.ErrInvalidQuery, fmt.Sprintf("unknown sort field %q", sortBy))
	}

	desc := true
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return Pageable{}, appErrors.Clone(appErrors.ErrInvalidQuery, fmt.Sprintf("unknown sort direction %q", direction))
	}

	return Pageable{Page: page, Size: size, Column: col, Desc: desc}, nil
}

// Unpaged returns the first page of a default-sorted request.
func Unpaged() Pageable {
	return Pageable{Page: 0, Size: DefaultPageSize, Column: "created_at", Desc: true}
}

// Offset returns the row offset of the page.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// OrderBy renders the ORDER BY list, breaking ties on id.
func (p Pageable) OrderBy(alias string) string {
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	if p.Column == "id" {
		return fmt.Sprintf("%sid %s", prefix, dir)
	}
	return fmt.Sprintf("%s%s %s, %sid ASC", prefix, p.Column, dir, prefix)
}

// Apply filters, sorts and pages interns in memory, returning the page and the total match count.
func Apply(interns []models.Intern, spec Spec, p Pageable) ([]models.Intern, int) {
	matched := make([]models.Intern, 0, len(interns))
	for i := range interns {
		if spec.Matches(&interns[i]) {
			matched = append(matched, interns[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		c := compare(&matched[i], &matched[j], p.Column)
		if c == 0 {
			return matched[i].ID < matched[j].ID
		}
		if p.Desc {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	start := p.Offset()
	if start >= total {
		return []models.Intern{}, total
	}
	end := start + p.Size
	if end > total {
		end = total
	}
	return matched[start:end], total
}

func compare(a, b *models.Intern, col string) int {
	switch col {
	case "start_date":
		return a.StartDate.Compare(b.StartDate)
	case "end_date":
		return a.EndDate.Compare(b.EndDate)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "id":
		return strings.Compare(a.ID, b.ID)
	}
	return strings.Compare(textValue(a, Field(col)), textValue(b, Field(col)))
}
