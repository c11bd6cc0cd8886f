package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/geo"
	"github.com/gleam/dashboard/internal/report"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gleam/dashboard/internal/upstream"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// stubBackend answers GETs from a path-keyed table and counts every call.
type stubBackend struct {
	mu    sync.Mutex
	gets  map[string]interface{}
	calls int
}

func (s *stubBackend) answer(path string, out interface{}) error {
	s.mu.Lock()
	s.calls++
	resp, ok := s.gets[path]
	s.mu.Unlock()
	if !ok || out == nil {
		return nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *stubBackend) Get(ctx context.Context, path string, query url.Values, token string, out interface{}) error {
	return s.answer(path, out)
}

func (s *stubBackend) Post(ctx context.Context, path, token string, body, out interface{}) error {
	return s.answer(path, out)
}

func (s *stubBackend) Put(ctx context.Context, path, token string, body, out interface{}) error {
	return s.answer(path, out)
}

func (s *stubBackend) Patch(ctx context.Context, path, token string, body, out interface{}) error {
	return s.answer(path, out)
}

func (s *stubBackend) Delete(ctx context.Context, path, token string) error {
	return s.answer(path, nil)
}

func (s *stubBackend) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToThread(string, dto.WSEvent) {}

// asUser stands in for the auth middleware.
func asUser(userID string, role domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("sessionID", "session-1")
		c.Locals("userID", userID)
		c.Locals("userRole", role)
		c.Locals("upstreamToken", "upstream-token")
		return c.Next()
	}
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, dto.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out dto.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &service.ValidationError{Fields: []dto.ErrorDetail{{Field: "title", Message: "wajib"}}}, 422, "VALIDATION_ERROR"},
		{"upstream", &upstream.Error{Status: 404, Code: "NOT_FOUND", Message: "tidak ada"}, 404, "NOT_FOUND"},
		{"superseded", fmt.Errorf("select: %w", geo.ErrSuperseded), 409, "SUPERSEDED"},
		{"coordinates", geo.ErrInvalidCoordinates, 400, "INVALID_COORDINATES"},
		{"session", service.ErrSessionRevoked, 401, "SESSION_EXPIRED"},
		{"prediction", service.ErrPredictionUnavailable, 502, "PREDICTION_UNAVAILABLE"},
		{"deadline", context.DeadlineExceeded, 504, "TIMEOUT"},
		{"cancelled", context.Canceled, 408, "CANCELLED"},
		{"unknown", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			status, body := doJSON(t, app, "GET", "/", nil)
			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app := newTestApp()

	status, body := doJSON(t, app, "GET", "/missing", nil)
	assert.Equal(t, 404, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestForumHandler_CreateThreadValidation(t *testing.T) {
	backend := &stubBackend{}
	h := NewForumHandler(service.NewForumService(backend, nopBroadcaster{}, time.Minute))

	app := newTestApp()
	app.Post("/forum/threads", asUser("7", domain.RoleUser), h.CreateThread)

	status, body := doJSON(t, app, "POST", "/forum/threads", dto.CreateThreadRequest{Title: "  ", Content: ""})
	assert.Equal(t, 422, status)
	require.NotNil(t, body.Error)
	assert.NotEmpty(t, body.Error.Details)
	assert.Zero(t, backend.Calls())
}

func TestLocationHandler_ReverseRejectsNonNumeric(t *testing.T) {
	h := NewLocationHandler(service.NewLocationService(&stubBackend{}, nil, nil, nil))

	app := newTestApp()
	app.Get("/locations/reverse", h.Reverse)

	status, body := doJSON(t, app, "GET", "/locations/reverse?lat=abc&lon=110.4", nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "INVALID_COORDINATES", body.Error.Code)
}

func TestLocationHandler_ReverseRejectsNaN(t *testing.T) {
	geocoder := geo.NewGeocoder("http://127.0.0.1:1", "gleam-test", time.Second, nil)
	h := NewLocationHandler(service.NewLocationService(&stubBackend{}, nil, nil, geocoder))

	app := newTestApp()
	app.Get("/locations/reverse", h.Reverse)

	for _, q := range []string{"lat=NaN&lon=NaN", "lat=-7.05&lon=nan", "lat=91&lon=110"} {
		status, body := doJSON(t, app, "GET", "/locations/reverse?"+q, nil)
		assert.Equal(t, 400, status, q)
		require.NotNil(t, body.Error, q)
		assert.Equal(t, "INVALID_COORDINATES", body.Error.Code, q)
	}
}

func TestAdminHandler_CannotDeleteSelf(t *testing.T) {
	backend := &stubBackend{}
	h := NewAdminHandler(service.NewAdminService(backend))

	app := newTestApp()
	app.Delete("/admin/users/:id", asUser("5", domain.RoleAdmin), h.DeleteUser)

	status, body := doJSON(t, app, "DELETE", "/admin/users/5", nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "CANNOT_DELETE_SELF", body.Error.Code)
	assert.Zero(t, backend.Calls())

	status, _ = doJSON(t, app, "DELETE", "/admin/users/6", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, 1, backend.Calls())
}

func TestReportHandler_ScreeningXLSX(t *testing.T) {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	backend := &stubBackend{gets: map[string]interface{}{
		"/nakes/screenings": []dto.ScreeningDetail{
			{ID: "1", Nama: "Siti", BMI: 22.86, KategoriTekanan: "Normal", RiskLabel: "Rendah", Kelurahan: "Pedalangan", CreatedAt: created},
			{ID: "2", Nama: "Budi", BMI: 31.2, KategoriTekanan: "Hipertensi Derajat 1", RiskLabel: "Tinggi", Kelurahan: "Tembalang", CreatedAt: created},
		},
	}}
	h := NewReportHandler(service.NewReportService(backend), service.NewReviewService(backend))

	app := newTestApp()
	app.Get("/reports/screenings.xlsx", asUser("3", domain.RoleNakes), h.ScreeningXLSX)

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/screenings.xlsx?kelurahan=Pedalangan", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, report.ContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentDisposition), `attachment; filename="laporan-skrining-`))

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Laporan")
}

func TestReportHandler_InvalidDate(t *testing.T) {
	backend := &stubBackend{}
	h := NewReportHandler(service.NewReportService(backend), service.NewReviewService(backend))

	app := newTestApp()
	app.Get("/reports/screenings", asUser("3", domain.RoleNakes), h.Screening)

	status, body := doJSON(t, app, "GET", "/reports/screenings?from=10-03-2024", nil)
	assert.Equal(t, 422, status)
	assert.Equal(t, "from", body.Error.Details[0].Field)
	assert.Zero(t, backend.Calls())
}

func TestForumHandler_ModerationIsStaffOnly(t *testing.T) {
	paths := []string{"/forum/threads/9/pin", "/forum/threads/9/lock", "/forum/threads/9/private"}

	tests := []struct {
		role   domain.UserRole
		status int
	}{
		{domain.RoleUser, 403},
		{domain.RoleNakes, 403},
		{domain.RoleManajemen, 200},
		{domain.RoleAdmin, 200},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			backend := &stubBackend{}
			h := NewForumHandler(service.NewForumService(backend, nopBroadcaster{}, time.Minute))

			app := newTestApp()
			h.Register(app.Group("/forum", asUser("7", tt.role)))

			for _, p := range paths {
				status, _ := doJSON(t, app, "PATCH", p, dto.ModerationRequest{Value: true})
				assert.Equal(t, tt.status, status, p)
			}
			if tt.status == 403 {
				assert.Zero(t, backend.Calls())
			} else {
				assert.Equal(t, len(paths), backend.Calls())
			}
		})
	}
}
