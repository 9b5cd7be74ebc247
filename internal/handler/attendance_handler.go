package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/dto"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, actor *models.User, req dto.AttendanceRequest) (*models.Attendance, error)
	CheckOut(ctx context.Context, actor *models.User) (*models.Attendance, error)
	MyHistory(ctx context.Context, actor *models.User, from, to *time.Time) ([]models.Attendance, error)
	InternHistory(ctx context.Context, internID string, from, to *time.Time) ([]models.Attendance, error)
}

// AttendanceHandler exposes daily check-in and check-out.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds an AttendanceHandler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// CheckIn godoc
// @Summary Check in for today
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AttendanceRequest false "Remarks"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/checkin [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.AttendanceRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "attendance") {
		return
	}
	record, err := h.service.CheckIn(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// CheckOut godoc
// @Summary Check out for today
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/checkout [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	record, err := h.service.CheckOut(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// My godoc
// @Summary The caller's attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /attendance/my [get]
func (h *AttendanceHandler) My(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	rows, err := h.service.MyHistory(c.Request.Context(), actorFromContext(c), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ForIntern godoc
// @Summary An intern's attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Intern ID"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id}/attendance [get]
func (h *AttendanceHandler) ForIntern(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	rows, err := h.service.InternHistory(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

func dateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	from, err := dateQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	return from, to, true
}
