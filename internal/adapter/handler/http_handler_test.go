package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/clock"
	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
	"github.com/rl1809/shareit/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *storage.MemoryAdapter
	service *service.BookingService
	clock   *clock.Fake
	owner   domain.User
	booker  domain.User
	other   domain.User
	item    domain.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:  storage.NewMemoryAdapter(),
		clock:  clock.NewFake(testNow),
		owner:  domain.User{Name: "Olga", Email: "olga@example.com"},
		booker: domain.User{Name: "Boris", Email: "boris@example.com"},
		other:  domain.User{Name: "Oscar", Email: "oscar@example.com"},
	}
	for _, u := range []*domain.User{&f.owner, &f.booker, &f.other} {
		if err := f.store.AddUser(ctx, u); err != nil {
			t.Fatalf("AddUser failed: %v", err)
		}
	}
	f.item = domain.Item{OwnerID: f.owner.ID, Name: "Ladder", Description: "3m aluminium", Available: true}
	if err := f.store.AddItem(ctx, &f.item); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	f.service = service.NewBookingService(f.store, f.store, f.store, storage.NewMemoryLocker(), service.WithClock(f.clock))
	return f
}

func (f *fixture) router(t *testing.T, perMin int) *gin.Engine {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := NewHTTPHandler(f.service, zap.NewNop())
	return NewRouter(h, RouterConfig{
		Logger:            zap.NewNop(),
		Metrics:           metrics.New(reg),
		Gatherer:          reg,
		MaxRequestsPerMin: perMin,
	})
}

func doRequest(r http.Handler, method, path string, userID int64, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(UserIDHeader, strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bookingBody(itemID int64, start, end time.Time) string {
	return `{"itemId":` + strconv.FormatInt(itemID, 10) +
		`,"start":"` + start.Format(TimeLayout) +
		`","end":"` + end.Format(TimeLayout) + `"}`
}

func decodeBooking(t *testing.T, w *httptest.ResponseRecorder) BookingResponse {
	t.Helper()
	var resp BookingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode booking: %v (%s)", err, w.Body.String())
	}
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestHTTP_AddBooking(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)

	start := testNow.Add(24 * time.Hour)
	w := doRequest(r, http.MethodPost, "/bookings", f.booker.ID, bookingBody(f.item.ID, start, start.Add(2*time.Hour)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeBooking(t, w)
	if resp.ID == 0 || resp.Status != "WAITING" {
		t.Errorf("unexpected booking: %+v", resp)
	}
	if resp.Item.ID != f.item.ID || resp.Item.Name != "Ladder" || !resp.Item.Available {
		t.Errorf("unexpected item: %+v", resp.Item)
	}
	if resp.Booker.ID != f.booker.ID || resp.Booker.Email != "boris@example.com" {
		t.Errorf("unexpected booker: %+v", resp.Booker)
	}
	if !strings.Contains(w.Body.String(), `"start":"2025-06-02T09:00:00"`) {
		t.Errorf("expected local timestamp format, got %s", w.Body.String())
	}
}

func TestHTTP_AddBooking_RFC3339(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)

	body := `{"itemId":1,"start":"2025-06-02T09:00:00Z","end":"2025-06-02T11:00:00+02:00"}`
	w := doRequest(r, http.MethodPost, "/bookings", f.booker.ID, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty interval, got %d: %s", w.Code, w.Body.String())
	}

	body = `{"itemId":1,"start":"2025-06-02T09:00:00Z","end":"2025-06-02T12:00:00+02:00"}`
	w = doRequest(r, http.MethodPost, "/bookings", f.booker.ID, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBooking(t, w)
	if !resp.End.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("expected end normalised to UTC, got %v", resp.End)
	}
}

func TestHTTP_AddBooking_Errors(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)
	start := testNow.Add(time.Hour)

	tests := []struct {
		name   string
		userID int64
		body   string
		want   int
	}{
		{"missing header", 0, bookingBody(f.item.ID, start, start.Add(time.Hour)), http.StatusBadRequest},
		{"malformed body", f.booker.ID, `{"itemId":`, http.StatusBadRequest},
		{"missing item", f.booker.ID, `{"start":"2025-06-02T09:00:00","end":"2025-06-02T10:00:00"}`, http.StatusBadRequest},
		{"bad timestamp", f.booker.ID, `{"itemId":1,"start":"yesterday","end":"2025-06-02T10:00:00"}`, http.StatusBadRequest},
		{"unknown user", 99, bookingBody(f.item.ID, start, start.Add(time.Hour)), http.StatusNotFound},
		{"unknown item", f.booker.ID, bookingBody(99, start, start.Add(time.Hour)), http.StatusNotFound},
		{"own item", f.owner.ID, bookingBody(f.item.ID, start, start.Add(time.Hour)), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/bookings", tt.userID, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if e := decodeError(t, w); e.Error == "" {
				t.Error("expected error field")
			}
		})
	}
}

func TestHTTP_ApproveFlow(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)

	start := testNow.Add(24 * time.Hour)
	created := decodeBooking(t, doRequest(r, http.MethodPost, "/bookings", f.booker.ID, bookingBody(f.item.ID, start, start.Add(2*time.Hour))))
	path := "/bookings/" + strconv.FormatInt(created.ID, 10)

	w := doRequest(r, http.MethodPatch, path+"?approved=true", f.booker.ID, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-owner, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPatch, path+"?approved=maybe", f.owner.ID, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed approved, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPatch, path+"?approved=true", f.owner.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBooking(t, w); got.Status != "APPROVED" {
		t.Errorf("expected APPROVED, got %s", got.Status)
	}

	w = doRequest(r, http.MethodPatch, path+"?approved=false", f.owner.ID, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for resolved booking, got %d", w.Code)
	}

	// An approved booking blocks an overlapping request.
	w = doRequest(r, http.MethodPost, "/bookings", f.other.ID, bookingBody(f.item.ID, start.Add(time.Hour), start.Add(3*time.Hour)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for overlap, got %d", w.Code)
	}
	if e := decodeError(t, w); !strings.Contains(e.Message, "overlaps") {
		t.Errorf("expected overlap message, got %q", e.Message)
	}
}

func TestHTTP_GetBooking(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)

	start := testNow.Add(time.Hour)
	created := decodeBooking(t, doRequest(r, http.MethodPost, "/bookings", f.booker.ID, bookingBody(f.item.ID, start, start.Add(time.Hour))))
	path := "/bookings/" + strconv.FormatInt(created.ID, 10)

	for _, userID := range []int64{f.booker.ID, f.owner.ID} {
		if w := doRequest(r, http.MethodGet, path, userID, ""); w.Code != http.StatusOK {
			t.Errorf("user %d: expected 200, got %d", userID, w.Code)
		}
	}

	if w := doRequest(r, http.MethodGet, path, f.other.ID, ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for stranger, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/bookings/999", f.booker.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/bookings/abc", f.booker.ID, ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestHTTP_ListBookings(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)

	first := testNow.Add(time.Hour)
	second := testNow.Add(48 * time.Hour)
	doRequest(r, http.MethodPost, "/bookings", f.booker.ID, bookingBody(f.item.ID, first, first.Add(time.Hour)))
	doRequest(r, http.MethodPost, "/bookings", f.booker.ID, bookingBody(f.item.ID, second, second.Add(time.Hour)))

	var list []BookingResponse
	w := doRequest(r, http.MethodGet, "/bookings", f.booker.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 2 || !list[0].Start.After(list[1].Start.Time) {
		t.Errorf("expected 2 bookings newest first, got %+v", list)
	}

	w = doRequest(r, http.MethodGet, "/bookings/owner?state=waiting", f.owner.ID, "")
	list = nil
	json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 2 {
		t.Errorf("expected 2 waiting owner bookings, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/bookings/owner", f.booker.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for user without items, got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/bookings?state=SOMETIME", f.booker.ID, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if e := decodeError(t, w); !strings.Contains(e.Message, "Unknown state: SOMETIME") {
		t.Errorf("unexpected message %q", e.Message)
	}

	w = doRequest(r, http.MethodGet, "/bookings/all", 0, "")
	list = nil
	json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 2 {
		t.Errorf("expected 2 bookings, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/bookings?state=PAST", f.booker.ID, "")
	if w.Body.String() != "[]" {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)

	w := doRequest(r, http.MethodGet, "/health", 0, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("unexpected health response: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected request id header")
	}

	start := testNow.Add(time.Hour)
	doRequest(r, http.MethodPost, "/bookings", f.booker.ID, bookingBody(f.item.ID, start, start.Add(time.Hour)))

	w = doRequest(r, http.MethodGet, "/metrics", 0, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "shareit_http_request_duration_seconds") {
		t.Error("expected http duration histogram in metrics output")
	}
}

func TestHTTP_RateLimit(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 2)

	for i := 0; i < 2; i++ {
		if w := doRequest(r, http.MethodGet, "/health", 0, ""); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if w := doRequest(r, http.MethodGet, "/health", 0, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestHTTP_Recovery(t *testing.T) {
	f := newFixture(t)
	r := f.router(t, 0)
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doRequest(r, http.MethodGet, "/boom", 0, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if e := decodeError(t, w); e.Error != "Internal Server Error" || e.Message != "" {
		t.Errorf("unexpected body: %+v", e)
	}
}
