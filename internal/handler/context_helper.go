package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/middleware"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/search"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

const defaultPageSize = 20

func actorFromContext(c *gin.Context) *models.User {
	return middleware.Actor(c)
}

// bindJSON decodes the body into dest and writes a 400 when it cannot.
func bindJSON(c *gin.Context, dest interface{}, what string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what+" payload"))
		return false
	}
	return true
}

// pageRequestFromQuery reads page, size, sortBy and sortDirection. Range checks are left to search.NewPageable.
func pageRequestFromQuery(c *gin.Context) (service.PageRequest, error) {
	req := service.PageRequest{
		Size:      defaultPageSize,
		SortBy:    c.Query("sortBy"),
		Direction: c.DefaultQuery("sortDirection", c.Query("direction")),
	}
	var err error
	if raw := c.Query("page"); raw != "" {
		if req.Page, err = strconv.Atoi(raw); err != nil {
			return req, appErrors.Clone(appErrors.ErrInvalidPagination, "page must be an integer")
		}
	}
	if raw := c.Query("size"); raw != "" {
		if req.Size, err = strconv.Atoi(raw); err != nil {
			return req, appErrors.Clone(appErrors.ErrInvalidPagination, "size must be an integer")
		}
	}
	return req, nil
}

func criteriaFromQuery(c *gin.Context) (search.Criteria, error) {
	criteria := search.Criteria{
		Keyword:    c.Query("keyword"),
		Department: c.Query("department"),
		University: c.Query("university"),
		Major:      c.Query("major"),
		Supervisor: c.Query("supervisor"),
		Status:     c.Query("status"),
	}
	dates := []struct {
		param string
		dest  **time.Time
	}{
		{"startDateFrom", &criteria.StartDateFrom},
		{"startDateTo", &criteria.StartDateTo},
		{"endDateFrom", &criteria.EndDateFrom},
		{"endDateTo", &criteria.EndDateTo},
	}
	for _, d := range dates {
		raw := strings.TrimSpace(c.Query(d.param))
		if raw == "" {
			continue
		}
		t, err := time.Parse(dto.DateLayout, raw)
		if err != nil {
			return criteria, appErrors.Clone(appErrors.ErrInvalidQuery, d.param+" must be formatted as YYYY-MM-DD")
		}
		*d.dest = &t
	}
	return criteria, nil
}

// dateQuery reads an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidQuery, name+" must be formatted as YYYY-MM-DD")
	}
	return &t, nil
}
