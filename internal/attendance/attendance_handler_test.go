package attendance_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hrms-lite/internal/attendance"
	attendanceerrors "hrms-lite/internal/attendance/errors"
	attendanceMock "hrms-lite/internal/attendance/mock"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) (*gin.Engine, *attendanceMock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := attendanceMock.NewMockService(gomock.NewController(t))
	r := gin.New()
	attendance.RegisterRoutes(r.Group("/api/v1"), attendance.NewHandler(svc, zap.NewNop()))
	return r, svc
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Error.Code
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Mark(t *testing.T) {
	employeeID := uuid.NewString()

	t.Run("created", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.EXPECT().Mark(gomock.Any(), attendance.MarkAttendanceRequest{EmployeeID: employeeID, Date: "2026-03-09", Status: "Present"}).
			Return(attendance.AttendanceResponse{ID: uuid.NewString(), EmployeeID: employeeID, Date: "2026-03-09", Status: attendance.StatusPresent}, nil)

		w := postJSON(r, "/api/v1/attendance", `{"employee_id":"`+employeeID+`","date":"2026-03-09","status":"Present"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"Present"`)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"employee missing", attendanceerrors.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND"},
		{"duplicate", attendanceerrors.ErrAttendanceAlreadyMarked, http.StatusBadRequest, "DUPLICATE_ATTENDANCE"},
		{"future date", attendanceerrors.ErrFutureDate, http.StatusBadRequest, "INVALID_DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupRouter(t)
			svc.EXPECT().Mark(gomock.Any(), gomock.Any()).Return(attendance.AttendanceResponse{}, tt.err)

			w := postJSON(r, "/api/v1/attendance", `{"employee_id":"`+employeeID+`","date":"2026-03-09","status":"Present"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w.Body.Bytes()))
		})
	}

	t.Run("wrong json type", func(t *testing.T) {
		r, _ := setupRouter(t)

		w := postJSON(r, "/api/v1/attendance", `{"employee_id":42}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w.Body.Bytes()))
	})
}

func TestHandler_GetAll_ParsesFilter(t *testing.T) {
	r, svc := setupRouter(t)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	svc.EXPECT().GetAll(gomock.Any(), attendance.AttendanceFilter{
		From:        &from,
		Departments: []string{"Engineering", "Human Resources"},
	}).Return([]attendance.AttendanceResponse{{}, {}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/attendance?from_date=2026-03-01&departments=Engineering&departments=Human+Resources&departments=", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meta":{"total":2}`)
}

func TestHandler_GetAll_BadDate(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendance?to_date=March", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w.Body.Bytes()))
}

func TestHandler_GetForEmployee(t *testing.T) {
	r, svc := setupRouter(t)
	employeeID := uuid.NewString()

	svc.EXPECT().GetForEmployee(gomock.Any(), employeeID, nil, nil).
		Return([]attendance.AttendanceResponse{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/attendance", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"data":[],"meta":{"total":0}}`, w.Body.String())
}

func TestHandler_Summary(t *testing.T) {
	r, svc := setupRouter(t)
	employeeID := uuid.NewString()

	svc.EXPECT().Summary(gomock.Any(), employeeID, gomock.Any(), gomock.Any()).
		Return(attendance.SummaryResponse{EmployeeID: employeeID, Present: 3, Absent: 1, Total: 4}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/employees/"+employeeID+"/attendance/summary?from_date=2026-03-01", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":4`)
}
