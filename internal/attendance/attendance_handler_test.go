package attendance_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"face-attendance/internal/attendance"
	attendanceerrors "face-attendance/internal/attendance/errors"
	attendanceMock "face-attendance/internal/attendance/mock"
	"face-attendance/internal/intake"
	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	apperror.Init()
}

func multipartRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="face.jpg"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		assert.NoError(t, err)
		_, _ = part.Write(data)
	}
	assert.NoError(t, w.WriteField("kiosk", "lobby"))
	assert.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendances/record", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func setupHandlerTest(t *testing.T, maxBytes int64) (*attendanceMock.MockService, *gin.Engine) {
	ctrl := gomock.NewController(t)
	svc := attendanceMock.NewMockService(ctrl)
	h := attendance.NewHandler(svc, maxBytes, zap.NewNop())

	r := gin.New()
	r.POST("/api/v1/attendances/record", h.Record)
	r.GET("/api/v1/attendances", h.GetAll)
	r.GET("/api/v1/attendances/history", h.GetHistory)
	r.GET("/api/v1/attendances/export", h.Export)
	return svc, r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_Record(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0}

	t.Run("recorded returns 201", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, img intake.CapturedImage) (attendance.RecordResult, error) {
				assert.Equal(t, jpeg, img.Data)
				assert.Equal(t, "image/jpeg", img.MIMEType)
				return attendance.RecordResult{
					Outcome:    attendance.OutcomeRecorded,
					PersonName: "Somchai",
					Confidence: 0.92,
					Event:      &attendance.AttendanceResponse{EventType: "CHECK_IN", Status: "ON_TIME"},
				}, nil
			})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "image", "image/jpeg", jpeg))

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Ok)
		assert.Contains(t, w.Body.String(), `"outcome":"RECORDED"`)
	})

	t.Run("file field is accepted too", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().Record(gomock.Any(), gomock.Any()).
			Return(attendance.RecordResult{Outcome: attendance.OutcomeRecorded}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "file", "image/png", jpeg))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown identity returns 200 with the caveat", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().Record(gomock.Any(), gomock.Any()).
			Return(attendance.RecordResult{Outcome: attendance.OutcomeUnknownIdentity, PersonName: "Visitor"}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "image", "image/jpeg", jpeg))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"outcome":"UNKNOWN_IDENTITY"`)
	})

	t.Run("missing image is invalid input", func(t *testing.T) {
		_, r := setupHandlerTest(t, 1024)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "", "", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, decode(t, w).Error.Code)
	})

	t.Run("non image type is invalid input", func(t *testing.T) {
		_, r := setupHandlerTest(t, 1024)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "image", "application/pdf", jpeg))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized image is invalid input", func(t *testing.T) {
		_, r := setupHandlerTest(t, 2)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "image", "image/jpeg", jpeg))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not recognized returns 422 with the confidence", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().Record(gomock.Any(), gomock.Any()).
			Return(attendance.RecordResult{}, attendanceerrors.ErrNotRecognized.WithDetails(map[string]any{"confidence": 0.7}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "image", "image/jpeg", jpeg))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode(t, w)
		assert.Equal(t, apperror.CodeNotRecognized, env.Error.Code)
		assert.Equal(t, map[string]any{"confidence": 0.7}, env.Error.Details)
	})

	t.Run("error mapping", func(t *testing.T) {
		cases := map[error]int{
			attendanceerrors.ErrConcurrencyConflict:    http.StatusConflict,
			attendanceerrors.ErrDayComplete:            http.StatusConflict,
			attendanceerrors.ErrRecognitionUnavailable: http.StatusServiceUnavailable,
			attendanceerrors.ErrPersistenceFailure:     http.StatusInternalServerError,
		}
		for svcErr, status := range cases {
			svc, r := setupHandlerTest(t, 1024)
			svc.EXPECT().Record(gomock.Any(), gomock.Any()).Return(attendance.RecordResult{}, svcErr)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, "image", "image/jpeg", jpeg))

			assert.Equal(t, status, w.Code, svcErr.Error())
		}
	})
}

func TestHandler_GetAll(t *testing.T) {
	t.Run("returns rows with pagination meta", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().GetAll(gomock.Any(), attendance.ListAttendanceRequest{
			StartDate: "2025-03-01",
			EndDate:   "2025-03-31",
			Page:      2,
			PageSize:  5,
		}).Return([]attendance.AttendanceResponse{{ID: "a"}}, int64(6), nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/attendances?start_date=2025-03-01&end_date=2025-03-31&page=2&page_size=5", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		if assert.NotNil(t, env.Meta) {
			assert.Equal(t, int64(6), env.Meta.Total)
			assert.Equal(t, 2, env.Meta.TotalPages)
			assert.Equal(t, 2, env.Meta.Page)
		}
	})

	t.Run("bad date is rejected before the service", func(t *testing.T) {
		_, r := setupHandlerTest(t, 1024)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances?start_date=14-03-2025", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w).Error.Message, "Start Date")
	})
}

func TestHandler_GetHistory(t *testing.T) {
	svc, r := setupHandlerTest(t, 1024)
	svc.EXPECT().GetHistory(gomock.Any(), 5).Return([]attendance.AttendanceResponse{{ID: "a"}, {ID: "b"}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances/history?limit=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"b"`)
}

func TestHandler_Export(t *testing.T) {
	t.Run("serves an xlsx attachment", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().Export(gomock.Any(), attendance.ListAttendanceRequest{StartDate: "2025-03-01"}).
			Return([]attendance.AttendanceResponse{{ID: "a", EmployeeName: "Somchai", EventType: "CHECK_IN"}}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances/export?start_date=2025-03-01", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, attendance.ExportContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance_2025-03-01_all.xlsx")
		// xlsx is a zip archive
		assert.Equal(t, []byte("PK"), w.Body.Bytes()[:2])
	})

	t.Run("too large is a json error", func(t *testing.T) {
		svc, r := setupHandlerTest(t, 1024)
		svc.EXPECT().Export(gomock.Any(), gomock.Any()).Return(nil, attendanceerrors.ErrExportTooLarge)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/attendances/export", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, decode(t, w).Error.Code)
	})
}
