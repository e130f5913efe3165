package attendance

import (
	"net/http"
	"strings"
	"time"

	"hrms-lite/internal/shared/apperror"
	"hrms-lite/internal/shared/clock"
	"hrms-lite/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Mark(c *gin.Context) {
	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http mark attendance bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

// GetAll serves GET /attendance?employee_id=&from_date=&to_date=&departments=a&departments=b
func (h *Handler) GetAll(c *gin.Context) {
	from, to, err := dateRangeQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filter := AttendanceFilter{
		EmployeeID:  strings.TrimSpace(c.Query("employee_id")),
		From:        from,
		To:          to,
		Departments: departmentsQuery(c),
	}

	resp, err := h.service.GetAll(c.Request.Context(), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, response.NewListMeta(len(resp)))
}

func (h *Handler) GetForEmployee(c *gin.Context) {
	from, to, err := dateRangeQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetForEmployee(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, response.NewListMeta(len(resp)))
}

func (h *Handler) Summary(c *gin.Context) {
	from, to, err := dateRangeQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Summary(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func dateRangeQuery(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = dateQuery(c, "from_date"); err != nil {
		return nil, nil, err
	}
	if to, err = dateQuery(c, "to_date"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := clock.ParseDate(raw)
	if err != nil {
		return nil, apperror.InvalidField(key)
	}
	return &t, nil
}

// departmentsQuery reads repeated departments keys, dropping blanks.
func departmentsQuery(c *gin.Context) []string {
	var out []string
	for _, d := range c.QueryArray("departments") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}
