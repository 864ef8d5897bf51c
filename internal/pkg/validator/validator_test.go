package validator

import (
	"testing"

	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug      string            `validate:"required,slug"`
	PowerMode *domain.PowerMode `validate:"omitempty,powermode"`
}

func TestValidate(t *testing.T) {
	good := domain.PowerModeAlt1
	bad := domain.PowerMode("hourly")

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate(&sample{Slug: "kl-7", PowerMode: &good}))
		assert.NoError(t, Validate(&sample{Slug: "kl-7"}))
	})

	t.Run("invalid fields are reported", func(t *testing.T) {
		err := Validate(&sample{Slug: "KL 7", PowerMode: &bad})
		require.Error(t, err)

		appErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, "VALIDATION_FAILED", appErr.Code)
		assert.Equal(t, "slug", appErr.Details["Slug"])
		assert.Equal(t, "powermode", appErr.Details["PowerMode"])
	})
}
