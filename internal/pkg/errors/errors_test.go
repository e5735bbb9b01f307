package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boundary-microservice/internal/pkg/errors"
)

func TestAppError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("reverse geocode: %w", errors.ErrTimeout)

	assert.True(t, stderrors.Is(wrapped, errors.ErrTimeout))
	assert.False(t, stderrors.Is(wrapped, errors.ErrNotFound))
}

func TestAppError_WithDetailsDoesNotMutateSentinel(t *testing.T) {
	detailed := errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{"index": 3})

	assert.Equal(t, 3, detailed.Details["index"])
	assert.Empty(t, errors.ErrInvalidCoordinates.Details)
	assert.True(t, stderrors.Is(detailed, errors.ErrInvalidCoordinates))
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", errors.ErrNoBoundaryFound))

	appErr, ok := errors.As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "NO_BOUNDARY_FOUND", appErr.Code)

	_, ok = errors.As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestAs_MultiErrorChains(t *testing.T) {
	t.Run("errors.Join", func(t *testing.T) {
		joined := stderrors.Join(stderrors.New("cache write failed"), errors.ErrProviderUnavailable)

		appErr, ok := errors.As(joined)
		assert.True(t, ok)
		assert.Equal(t, errors.ErrProviderUnavailable.Code, appErr.Code)
	})

	t.Run("several %w verbs", func(t *testing.T) {
		multi := fmt.Errorf("resolve: %w; cleanup: %w", stderrors.New("io"), errors.ErrTimeout)

		appErr, ok := errors.As(multi)
		assert.True(t, ok)
		assert.Equal(t, errors.ErrTimeout.Code, appErr.Code)
	})

	t.Run("joined wrapped in single %w", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", stderrors.Join(stderrors.New("a"), fmt.Errorf("b: %w", errors.ErrNotFound)))

		appErr, ok := errors.As(err)
		assert.True(t, ok)
		assert.Equal(t, errors.ErrNotFound.Code, appErr.Code)
	})

	t.Run("nil", func(t *testing.T) {
		_, ok := errors.As(nil)
		assert.False(t, ok)
	})
}
