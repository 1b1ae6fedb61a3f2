package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/application"
	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	now := func() time.Time { return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local) }
	svc := application.NewBookingService(
		testutil.NewBookingRepository(),
		bookingDomain.NewValidator(bookingDomain.WithClock(now)),
		nil,
		zap.NewNop(),
		application.WithClock(now),
	)

	r := gin.New()
	NewBookingHandler(svc, 0).RegisterRoutes(&r.RouterGroup)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func bookingBody(name, email, tod string) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  name,
		"customer_email": email,
		"customer_phone": 5551234,
		"date":           "2026-03-11",
		"time":           tod,
	}
}

func TestBookingHandler_Lifecycle(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/bookings", bookingBody("Alice", "alice@example.com", "10:00"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var created application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, "10:00:00", created.Time)

	w, env = do(t, r, http.MethodPost, "/api/v1/bookings", bookingBody("Bob", "bob@example.com", "10:00"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	path := fmt.Sprintf("/api/v1/bookings/%d", created.ID)
	w, env = do(t, r, http.MethodPut, path, bookingBody("Alice", "alice@example.com", "11:00"))
	require.Equal(t, http.StatusOK, w.Code)
	var updated application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "11:00:00", updated.Time)

	w, _ = do(t, r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestBookingHandler_CreateValidationErrors(t *testing.T) {
	r := newRouter(t)

	body := bookingBody("Alice 2", "not-an-email", "21:00")
	body["customer_phone"] = "12ab"
	w, env := do(t, r, http.MethodPost, "/api/v1/bookings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	var fields []string
	for _, d := range env.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"customer_name", "customer_email", "customer_phone", "time"}, fields)
}

func TestBookingHandler_AcceptsPhoneAsString(t *testing.T) {
	r := newRouter(t)

	body := bookingBody("Alice", "alice@example.com", "10:00")
	body["customer_phone"] = "5559876"
	w, env := do(t, r, http.MethodPost, "/api/v1/bookings", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(5559876), created.CustomerPhone)
}

func TestBookingHandler_MalformedBody(t *testing.T) {
	r := newRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/bookings", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestBookingHandler_List(t *testing.T) {
	r := newRouter(t)
	for i, name := range []string{"Ann", "Ben", "Cat", "Dan", "Eve", "Fay"} {
		w, _ := do(t, r, http.MethodPost, "/api/v1/bookings",
			bookingBody(name, fmt.Sprintf("c%d@example.com", i), fmt.Sprintf("%02d:00", 8+i)))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := do(t, r, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page application.BookingPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(6), page.TotalRecords)
	assert.Equal(t, DefaultPageLimit, page.Limit)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Bookings, DefaultPageLimit)

	w, env = do(t, r, http.MethodGet, "/api/v1/bookings?page=2&limit=4&date_filter=2026-03-11", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Bookings, 2)

	w, _ = do(t, r, http.MethodGet, "/api/v1/bookings?customer=Zed", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_ListRejectsBadParams(t *testing.T) {
	r := newRouter(t)

	for _, q := range []string{"page=abc", "limit=x", "page=0", "limit=0", "date_filter=11-03-2026"} {
		t.Run(q, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, "/api/v1/bookings?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		})
	}
}

func TestBookingHandler_Search(t *testing.T) {
	r := newRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/bookings", bookingBody("Alice", "alice@example.com", "10:00"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created application.BookingDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/bookings/search/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result application.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, application.SearchTypeID, result.SearchType)

	w, env = do(t, r, http.MethodGet, "/api/v1/bookings/search/alic", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, application.SearchTypeName, result.SearchType)
	assert.Equal(t, 1, result.TotalResults)

	w, _ = do(t, r, http.MethodGet, "/api/v1/bookings/search/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_InvalidID(t *testing.T) {
	r := newRouter(t)
	w, env := do(t, r, http.MethodDelete, "/api/v1/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid booking ID", env.Error.Message)
}
