package http_test

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/route-dashboard/internal/changeset"
	delivery "github.com/route-dashboard/internal/delivery/http"
	"github.com/route-dashboard/internal/delivery/http/handler"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/usecase/dto"
)

type mockRouteService struct{ mock.Mock }

func (m *mockRouteService) List(ctx context.Context) ([]*domain.Route, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Route), args.Error(1)
}

func (m *mockRouteService) Get(ctx context.Context, slug string) (*dto.RouteDetailResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RouteDetailResponse), args.Error(1)
}

func (m *mockRouteService) Create(ctx context.Context, req dto.CreateRouteRequest) (*domain.Route, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *mockRouteService) Update(ctx context.Context, slug string, req dto.UpdateRouteRequest) (*domain.Route, error) {
	args := m.Called(ctx, slug, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *mockRouteService) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

type mockChangeLogService struct{ mock.Mock }

func (m *mockChangeLogService) ListByRoute(ctx context.Context, slug string, limit int) ([]*domain.LocationChange, error) {
	args := m.Called(ctx, slug, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LocationChange), args.Error(1)
}

type mockLocationService struct{ mock.Mock }

func (m *mockLocationService) ListByRoute(ctx context.Context, slug string, req dto.ListLocationsRequest) (*dto.LocationListResponse, error) {
	args := m.Called(ctx, slug, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationListResponse), args.Error(1)
}

func (m *mockLocationService) GeoJSON(ctx context.Context, slug string) ([]byte, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockLocationService) CheckDuplicate(ctx context.Context, code int, excludeID *int64) (*domain.DuplicateCheckResult, error) {
	args := m.Called(ctx, code, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuplicateCheckResult), args.Error(1)
}

func (m *mockLocationService) CreateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *mockLocationService) UpdateLocation(ctx context.Context, loc *domain.Location) (*domain.Location, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *mockLocationService) DeleteLocation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Open(ctx context.Context, slug string, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	args := m.Called(ctx, slug, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *mockSessionService) Get(id string) (*dto.SessionResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *mockSessionService) Close(id string) error {
	return m.Called(id).Error(0)
}

func (m *mockSessionService) Stage(ctx context.Context, id string, req dto.StageChangeRequest) (*dto.StageChangeResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StageChangeResponse), args.Error(1)
}

func (m *mockSessionService) Discard(id string) (*dto.SessionResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *mockSessionService) Commit(ctx context.Context, id string) (*changeset.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*changeset.Result), args.Error(1)
}

func (m *mockSessionService) CheckCode(ctx context.Context, id string, req dto.CheckCodeRequest) (*dto.CheckCodeResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CheckCodeResponse), args.Error(1)
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

type testServer struct {
	app       *fiber.App
	routes    *mockRouteService
	changes   *mockChangeLogService
	locations *mockLocationService
	sessions  *mockSessionService
}

func newTestServer(checks map[string]handler.HealthChecker) *testServer {
	logger := zap.NewNop()
	ts := &testServer{
		app:       delivery.NewApp(logger),
		routes:    &mockRouteService{},
		changes:   &mockChangeLogService{},
		locations: &mockLocationService{},
		sessions:  &mockSessionService{},
	}
	if checks == nil {
		checks = map[string]handler.HealthChecker{}
	}
	delivery.RegisterRoutes(ts.app.Group("/api/v1"), delivery.Handlers{
		Route:    handler.NewRouteHandler(ts.routes, ts.changes, logger),
		Location: handler.NewLocationHandler(ts.locations, logger),
		Session:  handler.NewSessionHandler(ts.sessions, logger),
		Health:   handler.NewHealthHandler(checks, logger),
	})
	return ts
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func TestRoutes_GetNotFound(t *testing.T) {
	ts := newTestServer(nil)
	ts.routes.On("Get", mock.Anything, "missing").Return(nil, errors.ErrRouteNotFound)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/routes/missing", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ROUTE_NOT_FOUND", env.Error.Code)
}

func TestRoutes_CreateValidation(t *testing.T) {
	ts := newTestServer(nil)

	resp, env := ts.do(t, http.MethodPost, "/api/v1/routes", `{"slug":"Bad Slug"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "required", env.Error.Details["Name"])
	assert.Equal(t, "slug", env.Error.Details["Slug"])
	ts.routes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoutes_CreateDuplicateSlug(t *testing.T) {
	ts := newTestServer(nil)
	ts.routes.On("Create", mock.Anything, dto.CreateRouteRequest{Name: "KL 7"}).
		Return(nil, errors.ErrDuplicateSlug.WithDetails(map[string]interface{}{"slug": "kl-7"}))

	resp, env := ts.do(t, http.MethodPost, "/api/v1/routes", `{"name":"KL 7"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_SLUG", env.Error.Code)
}

func TestRoutes_Changes(t *testing.T) {
	ts := newTestServer(nil)
	ts.changes.On("ListByRoute", mock.Anything, "kl-7", 20).Return([]*domain.LocationChange{}, nil)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/routes/kl-7/changes?limit=20", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ts.changes.AssertExpectations(t)
}

func TestLocations_ListByRoute(t *testing.T) {
	ts := newTestServer(nil)
	ts.locations.On("ListByRoute", mock.Anything, "kl-7", dto.ListLocationsRequest{Sort: "priority"}).
		Return(&dto.LocationListResponse{Locations: []dto.LocationView{}, Sort: "priority"}, nil)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/routes/kl-7/locations?sort=priority", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "priority", env.Data["sort"])

	resp, env = ts.do(t, http.MethodGet, "/api/v1/routes/kl-7/locations?sort=random", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestLocations_GeoJSON(t *testing.T) {
	ts := newTestServer(nil)
	ts.locations.On("GeoJSON", mock.Anything, "kl-7").Return([]byte(`{"type":"FeatureCollection","features":[]}`), nil)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/routes/kl-7/locations.geojson", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
}

func TestLocations_CreateDuplicateCode(t *testing.T) {
	ts := newTestServer(nil)
	dup := []domain.DuplicateLocation{{ID: 5, Code: 43, RouteSlug: "kl-9"}}
	ts.locations.On("CreateLocation", mock.Anything, mock.MatchedBy(func(l *domain.Location) bool {
		return l.Code == 43 && l.RouteID == 1 && l.PowerMode == nil
	})).Return(nil, errors.ErrDuplicateCode.WithDetails(map[string]interface{}{"code": 43, "duplicates": dup}))

	body := `{"code":43,"location":"Lobby","delivery":"Daily","lat":3.1,"lng":101.6,"powerMode":"","routeId":1}`
	resp, env := ts.do(t, http.MethodPost, "/api/v1/locations", body)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_CODE", env.Error.Code)
	assert.Len(t, env.Error.Details["duplicates"], 1)
}

func TestLocations_CreateRejectsUnknownPowerMode(t *testing.T) {
	ts := newTestServer(nil)

	body := `{"code":43,"location":"Lobby","lat":3.1,"lng":101.6,"powerMode":"monthly","routeId":1}`
	resp, env := ts.do(t, http.MethodPost, "/api/v1/locations", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "powermode", env.Error.Details["PowerMode"])
}

func TestLocations_UpdateAndDelete(t *testing.T) {
	ts := newTestServer(nil)
	ts.locations.On("UpdateLocation", mock.Anything, mock.MatchedBy(func(l *domain.Location) bool {
		return l.ID == 7 && l.Code == 44
	})).Return(&domain.Location{ID: 7, Code: 44, RouteID: 1}, nil)
	ts.locations.On("DeleteLocation", mock.Anything, int64(7)).Return(nil)

	body := `{"code":44,"location":"Lobby","lat":3.1,"lng":101.6,"routeId":1}`
	resp, env := ts.do(t, http.MethodPut, "/api/v1/locations/7", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 7, env.Data["id"])

	resp, env = ts.do(t, http.MethodDelete, "/api/v1/locations/7", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 7, env.Data["id"])

	resp, env = ts.do(t, http.MethodDelete, "/api/v1/locations/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestLocations_CheckDuplicate(t *testing.T) {
	ts := newTestServer(nil)
	exclude := int64(3)
	ts.locations.On("CheckDuplicate", mock.Anything, 43, &exclude).
		Return(domain.NewDuplicateCheckResult(nil), nil)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/locations/check-duplicate?code=43&excludeId=3", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, env.Data["hasDuplicate"])

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/locations/check-duplicate", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessions_StageConflict(t *testing.T) {
	ts := newTestServer(nil)
	ts.sessions.On("Stage", mock.Anything, "s1", mock.MatchedBy(func(req dto.StageChangeRequest) bool {
		return req.Type == "create" && req.ID == nil && req.Data != nil && req.Data.Code == 43
	})).Return(nil, errors.ErrDuplicateCode.WithDetails(map[string]interface{}{"code": 43}))

	body := `{"type":"create","data":{"code":43,"location":"Lobby","lat":1,"lng":1}}`
	resp, env := ts.do(t, http.MethodPost, "/api/v1/sessions/s1/changes", body)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_CODE", env.Error.Code)
}

func TestSessions_CommitFailure(t *testing.T) {
	ts := newTestServer(nil)
	ts.sessions.On("Commit", mock.Anything, "s1").Return(nil, errors.ErrCommitFailed.WithDetails(map[string]interface{}{
		"index": 2,
		"cause": "LOCATION_NOT_FOUND",
	}))

	resp, env := ts.do(t, http.MethodPost, "/api/v1/sessions/s1/commit", "")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "COMMIT_FAILED", env.Error.Code)
	assert.EqualValues(t, 2, env.Error.Details["index"])
}

func TestSessions_CommitInProgress(t *testing.T) {
	ts := newTestServer(nil)
	ts.sessions.On("Commit", mock.Anything, "s1").Return(nil, errors.ErrCommitInProgress)

	resp, env := ts.do(t, http.MethodPost, "/api/v1/sessions/s1/commit", "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "COMMIT_IN_PROGRESS", env.Error.Code)
}

func TestSessions_OpenWithoutBody(t *testing.T) {
	ts := newTestServer(nil)
	ts.sessions.On("Open", mock.Anything, "kl-7", dto.OpenSessionRequest{}).
		Return(&dto.SessionResponse{ID: "s1", RouteSlug: "kl-7", Mode: changeset.ModeBuffered}, nil)

	resp, env := ts.do(t, http.MethodPost, "/api/v1/routes/kl-7/sessions", "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "buffered", env.Data["mode"])
}

func TestSessions_CheckCodeSuperseded(t *testing.T) {
	ts := newTestServer(nil)
	ts.sessions.On("CheckCode", mock.Anything, "s1", dto.CheckCodeRequest{Code: 43}).
		Return(&dto.CheckCodeResponse{Superseded: true}, nil)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/sessions/s1/check-code?code=43", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, env.Data["superseded"])
}

func TestHealth(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		ts := newTestServer(map[string]handler.HealthChecker{
			"postgres": healthFunc(func(context.Context) error { return nil }),
			"redis":    healthFunc(func(context.Context) error { return nil }),
		})

		resp, _ := ts.do(t, http.MethodGet, "/api/v1/health", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("redis down", func(t *testing.T) {
		ts := newTestServer(map[string]handler.HealthChecker{
			"postgres": healthFunc(func(context.Context) error { return nil }),
			"redis":    healthFunc(func(context.Context) error { return stderrors.New("connection refused") }),
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		resp, err := ts.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body handler.HealthResponse
		raw, _ := io.ReadAll(resp.Body)
		require.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "healthy", body.Dependencies["postgres"])
		assert.Equal(t, "unhealthy", body.Dependencies["redis"])
	})
}

func TestUnknownEndpoint(t *testing.T) {
	ts := newTestServer(nil)

	resp, env := ts.do(t, http.MethodGet, "/api/v1/nope", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)
}
