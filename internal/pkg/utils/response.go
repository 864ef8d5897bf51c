package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/route-dashboard/internal/pkg/errors"
)

// SuccessResponse - конверт успешного ответа
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// ErrorResponse - конверт ошибки. RequestID совпадает с X-Request-ID ответа.
type ErrorResponse struct {
	Error     *errors.AppError `json:"error"`
	RequestID string           `json:"requestId,omitempty"`
}

type Meta struct {
	Total int `json:"total"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{Data: data, Meta: meta})
}

// SendCreated - ответ 201 с созданной сущностью
func SendCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Data: data})
}

// SendNoContent - ответ 204 без тела
func SendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// SendError отвечает ошибкой приложения; любая другая ошибка становится INTERNAL_SERVER_ERROR
func SendError(c *fiber.Ctx, err error) error {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternalServer
	}
	return c.Status(appErr.StatusCode).JSON(newErrorResponse(c, appErr))
}

// SendErrorStatus - ошибка с явным HTTP статусом (ошибки самого fiber: 404 маршрута, 405, 413)
func SendErrorStatus(c *fiber.Ctx, status int, appErr *errors.AppError) error {
	return c.Status(status).JSON(newErrorResponse(c, appErr))
}

func newErrorResponse(c *fiber.Ctx, appErr *errors.AppError) ErrorResponse {
	resp := ErrorResponse{Error: appErr}
	if rid, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		resp.RequestID = rid
	}
	return resp
}
