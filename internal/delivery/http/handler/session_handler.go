package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/pkg/utils"
	"github.com/route-dashboard/internal/usecase/dto"
	"go.uber.org/zap"
)

// SessionHandler - обработчик сессий редактирования
type SessionHandler struct {
	sessionUC SessionService
	logger    *zap.Logger
}

// NewSessionHandler - создание нового SessionHandler
func NewSessionHandler(sessionUC SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		logger:    logger,
	}
}

// Open godoc
// @Summary Открыть сессию редактирования маршрута
// @Description mode=buffered копит изменения до commit, mode=immediate применяет каждое сразу
// @Tags Sessions
// @Accept json
// @Produce json
// @Param slug path string true "Slug маршрута"
// @Param request body dto.OpenSessionRequest false "Режим"
// @Success 201 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{slug}/sessions [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	var req dto.OpenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
		}
	}

	session, err := h.sessionUC.Open(c.Context(), c.Params("slug"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, session)
}

// Get godoc
// @Summary Состояние сессии
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.sessionUC.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, session, nil)
}

// Close godoc
// @Summary Закрыть сессию
// @Description Несохранённые изменения теряются
// @Tags Sessions
// @Param id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.sessionUC.Close(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendNoContent(c)
}

// Stage godoc
// @Summary Поставить изменение точки
// @Description create без id получает временный отрицательный ID. Код проверяется на дубликаты с учётом уже поставленных изменений.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.StageChangeRequest true "Изменение"
// @Success 200 {object} utils.SuccessResponse{data=dto.StageChangeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse "Код уже используется или идёт сохранение"
// @Router /api/v1/sessions/{id}/changes [post]
func (h *SessionHandler) Stage(c *fiber.Ctx) error {
	var req dto.StageChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	result, err := h.sessionUC.Stage(c.Context(), c.Params("id"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Discard godoc
// @Summary Отменить все поставленные изменения
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/changes [delete]
func (h *SessionHandler) Discard(c *fiber.Ctx) error {
	session, err := h.sessionUC.Discard(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, session, nil)
}

// Commit godoc
// @Summary Сохранить поставленные изменения
// @Description Изменения применяются по одному в порядке постановки. При ошибке уже применённые изменения не откатываются, буфер сохраняется.
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=changeset.Result}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse "Сохранение уже идёт"
// @Failure 502 {object} utils.ErrorResponse "Частичное сохранение"
// @Router /api/v1/sessions/{id}/commit [post]
func (h *SessionHandler) Commit(c *fiber.Ctx) error {
	result, err := h.sessionUC.Commit(c.Context(), c.Params("id"))
	if err != nil {
		h.logger.Warn("Commit failed", zap.String("session_id", c.Params("id")), zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result.Applied)})
}

// CheckCode godoc
// @Summary Спекулятивная проверка кода
// @Description Проверка выполняется после паузы; запрос, вытесненный более новым, возвращает superseded=true
// @Tags Sessions
// @Produce json
// @Param id path string true "ID сессии"
// @Param code query int true "Код точки"
// @Param excludeId query int false "ID точки, которую не учитывать"
// @Success 200 {object} utils.SuccessResponse{data=dto.CheckCodeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/check-code [get]
func (h *SessionHandler) CheckCode(c *fiber.Ctx) error {
	excludeID, err := optionalInt64Query(c, "excludeId")
	if err != nil {
		return utils.SendError(c, err)
	}

	req := dto.CheckCodeRequest{
		Code:      c.QueryInt("code"),
		ExcludeID: excludeID,
	}

	result, err := h.sessionUC.CheckCode(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}
