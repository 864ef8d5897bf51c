package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/route-dashboard/internal/pkg/errors"
)

func int64Param(c *fiber.Ctx, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{name: "must be an integer"})
	}
	return v, nil
}

// optionalInt64Query - nil, если параметр не передан
func optionalInt64Query(c *fiber.Ctx, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{name: "must be an integer"})
	}
	return &v, nil
}
