package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		common.ErrValidation:      http.StatusBadRequest,
		common.ErrAlreadyExists:   http.StatusBadRequest,
		common.ErrOTPInvalid:      http.StatusBadRequest,
		common.ErrOTPExpired:      http.StatusBadRequest,
		common.ErrAlreadyVerified: http.StatusBadRequest,
		common.ErrUnauthorized:    http.StatusUnauthorized,
		common.ErrForbidden:       http.StatusForbidden,
		common.ErrNotFound:        http.StatusNotFound,
		common.ErrTooManyRequests: http.StatusTooManyRequests,
		common.ErrDelivery:        http.StatusInternalServerError,
		errors.New("boom"):        http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(common.NewError(err, "x")), err.Error())
	}

	wrapped := fmt.Errorf("lookup: %w", common.NewError(common.ErrNotFound, "User not found"))
	assert.Equal(t, http.StatusNotFound, StatusFor(wrapped))
}

func TestErrorHandlerBody(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Get("/kind", func(*fiber.Ctx) error {
		return common.NewError(common.ErrForbidden, "Access denied. Admin only.")
	})
	app.Get("/fiber", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/kind", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Access denied. Admin only."}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
