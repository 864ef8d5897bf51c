package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/usecase"
	"github.com/route-dashboard/internal/usecase/dto"
)

// суббота, нечётное число: alt2 активен, weekday и weekend - нет
var saturday = time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC)

const cacheTTL = 5 * time.Minute

type locationFixture struct {
	locations *MockLocationRepository
	routes    *MockRouteRepository
	cache     *MockCacheRepository
	stream    *MockStreamRepository
	uc        *usecase.LocationUseCase
}

func newLocationFixture() *locationFixture {
	f := &locationFixture{
		locations: &MockLocationRepository{},
		routes:    &MockRouteRepository{},
		cache:     &MockCacheRepository{},
		stream:    &MockStreamRepository{},
	}
	f.uc = usecase.NewLocationUseCase(
		f.locations, f.routes, f.cache, f.stream,
		domain.FixedClock{T: saturday}, cacheTTL, zap.NewNop(),
	)
	return f
}

func sampleLocation(id int64, code int, mode *domain.PowerMode) *domain.Location {
	return &domain.Location{
		ID:           id,
		Code:         code,
		Location:     "Lobby",
		Delivery:     "Daily",
		Lat:          3.139,
		Lng:          101.6869,
		PowerMode:    mode,
		Descriptions: domain.Descriptions{},
		RouteID:      1,
	}
}

var kl7 = &domain.Route{ID: 1, Name: "KL 7", Slug: "kl-7"}

func TestLocationUseCase_ListByRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit sorted by priority", func(t *testing.T) {
		f := newLocationFixture()
		cached := []*domain.Location{
			sampleLocation(10, 1, ptrPowerMode(domain.PowerModeWeekday)),
			sampleLocation(11, 2, nil),
			sampleLocation(12, 3, ptrPowerMode(domain.PowerModeAlt2)),
		}
		f.routes.On("GetBySlug", ctx, "kl-7").Return(kl7, nil)
		f.cache.On("GetRouteLocations", ctx, int64(1)).Return(cached, nil)

		resp, err := f.uc.ListByRoute(ctx, "kl-7", dto.ListLocationsRequest{Sort: dto.SortByPriority})

		require.NoError(t, err)
		require.Len(t, resp.Locations, 3)
		assert.Equal(t, 3, resp.Locations[0].Code)
		assert.True(t, resp.Locations[0].Active)
		assert.Equal(t, domain.PriorityActive, resp.Locations[0].Priority)
		assert.Equal(t, 2, resp.Locations[1].Code)
		assert.Equal(t, domain.PriorityUnset, resp.Locations[1].Priority)
		assert.Equal(t, 1, resp.Locations[2].Code)
		assert.Equal(t, domain.PriorityInactive, resp.Locations[2].Priority)
		assert.Equal(t, dto.SortByPriority, resp.Sort)
		assert.Equal(t, saturday, resp.EvaluatedAt)
		f.locations.AssertNotCalled(t, "ListByRoute", mock.Anything, mock.Anything)
	})

	t.Run("cache miss reads store and fills cache", func(t *testing.T) {
		f := newLocationFixture()
		stored := []*domain.Location{sampleLocation(10, 1, nil), sampleLocation(11, 2, nil)}
		f.routes.On("GetBySlug", ctx, "kl-7").Return(kl7, nil)
		f.cache.On("GetRouteLocations", ctx, int64(1)).Return(nil, nil)
		f.locations.On("ListByRoute", ctx, int64(1)).Return(stored, nil)
		f.cache.On("SetRouteLocations", ctx, int64(1), stored, cacheTTL).Return(nil)

		resp, err := f.uc.ListByRoute(ctx, "kl-7", dto.ListLocationsRequest{})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, dto.SortByCode, resp.Sort)
		f.cache.AssertExpectations(t)
	})

	t.Run("cache failure falls back to store", func(t *testing.T) {
		f := newLocationFixture()
		stored := []*domain.Location{sampleLocation(10, 1, nil)}
		f.routes.On("GetBySlug", ctx, "kl-7").Return(kl7, nil)
		f.cache.On("GetRouteLocations", ctx, int64(1)).Return(nil, stderrors.New("redis down"))
		f.locations.On("ListByRoute", ctx, int64(1)).Return(stored, nil)
		f.cache.On("SetRouteLocations", ctx, int64(1), stored, cacheTTL).Return(stderrors.New("redis down"))

		resp, err := f.uc.ListByRoute(ctx, "kl-7", dto.ListLocationsRequest{})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("unknown route", func(t *testing.T) {
		f := newLocationFixture()
		f.routes.On("GetBySlug", ctx, "nope").Return(nil, errors.ErrRouteNotFound)

		_, err := f.uc.ListByRoute(ctx, "nope", dto.ListLocationsRequest{})

		assert.ErrorIs(t, err, errors.ErrRouteNotFound)
	})
}

func TestLocationUseCase_CreateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate code is rejected before insert", func(t *testing.T) {
		f := newLocationFixture()
		loc := sampleLocation(0, 43, nil)
		dup := []domain.DuplicateLocation{{ID: 5, Code: 43, Location: "Mall", RouteID: 2, RouteName: "KL 9", RouteSlug: "kl-9"}}
		f.locations.On("FindByCode", ctx, 43, (*int64)(nil)).Return(dup, nil)

		_, err := f.uc.CreateLocation(ctx, loc)

		require.Error(t, err)
		appErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, "DUPLICATE_CODE", appErr.Code)
		assert.Equal(t, dup, appErr.Details["duplicates"])
		f.locations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("success invalidates cache and publishes event", func(t *testing.T) {
		f := newLocationFixture()
		loc := sampleLocation(0, 44, nil)
		created := sampleLocation(7, 44, nil)
		f.locations.On("FindByCode", ctx, 44, (*int64)(nil)).Return([]domain.DuplicateLocation{}, nil)
		f.locations.On("Create", ctx, loc).Return(created, nil)
		f.cache.On("InvalidateRoutes", ctx, []int64{1}).Return(nil)
		f.stream.On("PublishToStream", ctx, domain.StreamLocationChanges, mock.MatchedBy(func(e domain.LocationChangeEvent) bool {
			return e.LocationID == 7 && e.Type == domain.ChangeCreate && e.Code == 44 && e.RouteID == 1
		})).Return(nil)

		got, err := f.uc.CreateLocation(ctx, loc)

		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		f.cache.AssertExpectations(t)
		f.stream.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		f := newLocationFixture()
		loc := sampleLocation(0, 45, nil)
		f.locations.On("FindByCode", ctx, 45, (*int64)(nil)).Return([]domain.DuplicateLocation{}, nil)
		f.locations.On("Create", ctx, loc).Return(sampleLocation(8, 45, nil), nil)
		f.cache.On("InvalidateRoutes", ctx, []int64{1}).Return(nil)
		f.stream.On("PublishToStream", ctx, domain.StreamLocationChanges, mock.Anything).Return(stderrors.New("stream down"))

		_, err := f.uc.CreateLocation(ctx, loc)

		assert.NoError(t, err)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		f := newLocationFixture()
		loc := sampleLocation(0, 46, nil)
		loc.Lat = 91

		_, err := f.uc.CreateLocation(ctx, loc)

		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})

	t.Run("unknown power mode", func(t *testing.T) {
		f := newLocationFixture()
		loc := sampleLocation(0, 46, ptrPowerMode("monthly"))

		_, err := f.uc.CreateLocation(ctx, loc)

		assert.ErrorIs(t, err, errors.ErrInvalidPowerMode)
	})
}

func TestLocationUseCase_UpdateLocation_MovesRoute(t *testing.T) {
	ctx := context.Background()
	f := newLocationFixture()

	existing := sampleLocation(7, 44, nil)
	moved := sampleLocation(7, 44, nil)
	moved.RouteID = 2

	f.locations.On("GetByID", ctx, int64(7)).Return(existing, nil)
	f.locations.On("FindByCode", ctx, 44, ptrInt64(7)).Return([]domain.DuplicateLocation{}, nil)
	f.locations.On("Update", ctx, moved).Return(moved, nil)
	f.cache.On("InvalidateRoutes", ctx, []int64{1, 2}).Return(nil)
	f.stream.On("PublishToStream", ctx, domain.StreamLocationChanges, mock.MatchedBy(func(e domain.LocationChangeEvent) bool {
		return e.Type == domain.ChangeUpdate && e.RouteID == 2
	})).Return(nil)

	got, err := f.uc.UpdateLocation(ctx, moved)

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.RouteID)
	f.cache.AssertExpectations(t)
	f.stream.AssertExpectations(t)
}

func TestLocationUseCase_DeleteLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newLocationFixture()
		f.locations.On("Delete", ctx, int64(7)).Return(sampleLocation(7, 44, nil), nil)
		f.cache.On("InvalidateRoutes", ctx, []int64{1}).Return(nil)
		f.stream.On("PublishToStream", ctx, domain.StreamLocationChanges, mock.MatchedBy(func(e domain.LocationChangeEvent) bool {
			return e.Type == domain.ChangeDelete && e.LocationID == 7
		})).Return(nil)

		assert.NoError(t, f.uc.DeleteLocation(ctx, 7))
		f.stream.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newLocationFixture()
		f.locations.On("Delete", ctx, int64(99)).Return(nil, errors.ErrLocationNotFound)

		err := f.uc.DeleteLocation(ctx, 99)

		assert.ErrorIs(t, err, errors.ErrLocationNotFound)
		f.cache.AssertNotCalled(t, "InvalidateRoutes", mock.Anything, mock.Anything)
	})
}

func TestLocationUseCase_CheckDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newLocationFixture()
	f.locations.On("FindByCode", ctx, 50, ptrInt64(3)).Return(nil, nil)

	res, err := f.uc.CheckDuplicate(ctx, 50, ptrInt64(3))

	require.NoError(t, err)
	assert.False(t, res.HasDuplicate)
	assert.NotNil(t, res.Duplicates)
}

func TestLocationUseCase_GeoJSON(t *testing.T) {
	ctx := context.Background()
	f := newLocationFixture()

	loc := sampleLocation(10, 1, ptrPowerMode(domain.PowerModeAlt2))
	loc.Color = ptrString("#ff0000")
	loc.Descriptions = loc.Descriptions.Set("door", "B2")

	f.routes.On("GetBySlug", ctx, "kl-7").Return(kl7, nil)
	f.cache.On("GetRouteLocations", ctx, int64(1)).Return([]*domain.Location{loc}, nil)

	data, err := f.uc.GeoJSON(ctx, "kl-7")
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, sonic.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	feature := fc.Features[0]
	assert.Equal(t, "10", feature.ID)
	assert.Equal(t, "Point", feature.Geometry.Type)
	assert.Equal(t, []float64{101.6869, 3.139}, feature.Geometry.Coordinates)
	assert.Equal(t, true, feature.Properties["active"])
	assert.Equal(t, "alt2", feature.Properties["powerMode"])
	assert.Equal(t, "#ff0000", feature.Properties["color"])
}
