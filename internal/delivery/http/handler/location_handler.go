package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/pkg/utils"
	"github.com/route-dashboard/internal/pkg/validator"
	"github.com/route-dashboard/internal/usecase/dto"
	"go.uber.org/zap"
)

// LocationHandler - обработчик запросов по точкам доставки
type LocationHandler struct {
	locationUC LocationService
	logger     *zap.Logger
}

// NewLocationHandler - создание нового LocationHandler
func NewLocationHandler(locationUC LocationService, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{
		locationUC: locationUC,
		logger:     logger,
	}
}

// ListByRoute godoc
// @Summary Точки маршрута
// @Description Точки по коду или по приоритету power mode на текущую дату
// @Tags Locations
// @Produce json
// @Param slug path string true "Slug маршрута"
// @Param sort query string false "code или priority" default(code)
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug}/locations [get]
func (h *LocationHandler) ListByRoute(c *fiber.Ctx) error {
	req := dto.ListLocationsRequest{Sort: c.Query("sort")}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.locationUC.ListByRoute(c.Context(), c.Params("slug"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total})
}

// GeoJSON godoc
// @Summary Точки маршрута в GeoJSON
// @Tags Locations
// @Produce json
// @Param slug path string true "Slug маршрута"
// @Success 200 {object} map[string]interface{} "FeatureCollection"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug}/locations.geojson [get]
func (h *LocationHandler) GeoJSON(c *fiber.Ctx) error {
	data, err := h.locationUC.GeoJSON(c.Context(), c.Params("slug"))
	if err != nil {
		return utils.SendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	return c.Send(data)
}

// Create godoc
// @Summary Создание точки
// @Tags Locations
// @Accept json
// @Produce json
// @Param request body dto.LocationRequest true "Точка"
// @Success 201 {object} utils.SuccessResponse{data=domain.Location}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse "Код уже используется"
// @Router /api/v1/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	loc, err := h.locationUC.CreateLocation(c.Context(), req.ToDomain(0))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, loc)
}

// Update godoc
// @Summary Замена точки
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path int true "ID точки"
// @Param request body dto.LocationRequest true "Точка"
// @Success 200 {object} utils.SuccessResponse{data=domain.Location}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse "Код уже используется"
// @Router /api/v1/locations/{id} [put]
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	loc, err := h.locationUC.UpdateLocation(c.Context(), req.ToDomain(id))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, loc, nil)
}

// Delete godoc
// @Summary Удаление точки
// @Tags Locations
// @Produce json
// @Param id path int true "ID точки"
// @Success 200 {object} utils.SuccessResponse{data=dto.DeleteLocationResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/locations/{id} [delete]
func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.locationUC.DeleteLocation(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.DeleteLocationResponse{ID: id}, nil)
}

// CheckDuplicate godoc
// @Summary Проверка кода на дубликаты
// @Description Ищет точки с тем же кодом во всех маршрутах
// @Tags Locations
// @Produce json
// @Param code query int true "Код точки"
// @Param excludeId query int false "ID точки, которую не учитывать"
// @Success 200 {object} utils.SuccessResponse{data=domain.DuplicateCheckResult}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/locations/check-duplicate [get]
func (h *LocationHandler) CheckDuplicate(c *fiber.Ctx) error {
	excludeID, err := optionalInt64Query(c, "excludeId")
	if err != nil {
		return utils.SendError(c, err)
	}

	req := dto.CheckDuplicateRequest{
		Code:      c.QueryInt("code"),
		ExcludeID: excludeID,
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.locationUC.CheckDuplicate(c.Context(), req.Code, req.ExcludeID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// DeliverySuggestions godoc
// @Summary Подсказки для поля delivery
// @Tags Locations
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]string}
// @Router /api/v1/deliveries/suggestions [get]
func (h *LocationHandler) DeliverySuggestions(c *fiber.Ctx) error {
	return utils.SendSuccess(c, domain.DeliverySuggestions, nil)
}
