package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/pkg/utils"
	"github.com/route-dashboard/internal/pkg/validator"
	"github.com/route-dashboard/internal/usecase/dto"
	"go.uber.org/zap"
)

// RouteHandler - обработчик запросов по маршрутам
type RouteHandler struct {
	routeUC     RouteService
	changeLogUC ChangeLogService
	logger      *zap.Logger
}

// NewRouteHandler - создание нового RouteHandler
func NewRouteHandler(routeUC RouteService, changeLogUC ChangeLogService, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeUC:     routeUC,
		changeLogUC: changeLogUC,
		logger:      logger,
	}
}

// List godoc
// @Summary Список маршрутов
// @Tags Routes
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Route}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/routes [get]
func (h *RouteHandler) List(c *fiber.Ctx) error {
	routes, err := h.routeUC.List(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, routes, &utils.Meta{Total: len(routes)})
}

// Get godoc
// @Summary Маршрут по slug
// @Description Возвращает маршрут с точками (по коду) и последними изменениями
// @Tags Routes
// @Produce json
// @Param slug path string true "Slug маршрута"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteDetailResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug} [get]
func (h *RouteHandler) Get(c *fiber.Ctx) error {
	route, err := h.routeUC.Get(c.Context(), c.Params("slug"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, route, nil)
}

// Create godoc
// @Summary Создание маршрута
// @Description Если slug не указан, он строится из имени
// @Tags Routes
// @Accept json
// @Produce json
// @Param request body dto.CreateRouteRequest true "Маршрут"
// @Success 201 {object} utils.SuccessResponse{data=domain.Route}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/routes [post]
func (h *RouteHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	route, err := h.routeUC.Create(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, route)
}

// Update godoc
// @Summary Частичное обновление маршрута
// @Tags Routes
// @Accept json
// @Produce json
// @Param slug path string true "Slug маршрута"
// @Param request body dto.UpdateRouteRequest true "Изменяемые поля"
// @Success 200 {object} utils.SuccessResponse{data=domain.Route}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug} [patch]
func (h *RouteHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	route, err := h.routeUC.Update(c.Context(), c.Params("slug"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, route, nil)
}

// Delete godoc
// @Summary Удаление маршрута
// @Description Точки маршрута удаляются вместе с ним
// @Tags Routes
// @Param slug path string true "Slug маршрута"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug} [delete]
func (h *RouteHandler) Delete(c *fiber.Ctx) error {
	if err := h.routeUC.Delete(c.Context(), c.Params("slug")); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendNoContent(c)
}

// Changes godoc
// @Summary История изменений точек маршрута
// @Tags Routes
// @Produce json
// @Param slug path string true "Slug маршрута"
// @Param limit query int false "Количество записей (до 500)" default(50)
// @Success 200 {object} utils.SuccessResponse{data=[]domain.LocationChange}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug}/changes [get]
func (h *RouteHandler) Changes(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	changes, err := h.changeLogUC.ListByRoute(c.Context(), c.Params("slug"), limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, changes, &utils.Meta{Total: len(changes)})
}
