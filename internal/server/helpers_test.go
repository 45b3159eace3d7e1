package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"townsquare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "product ID", humanizeParam("productId"))
	assert.Equal(t, "chat room ID", humanizeParam("chatRoomId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewNotFoundError("Community", 1), fiber.StatusNotFound},
		{models.NewValidationError("bad"), fiber.StatusBadRequest},
		{models.NewUnauthorizedError("who"), fiber.StatusUnauthorized},
		{models.NewForbiddenError("no"), fiber.StatusForbidden},
		{models.NewConflictError("taken"), fiber.StatusConflict},
		{models.NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return nil
	})

	cases := map[string]Pagination{
		"/":                     {Limit: 20, Offset: 0},
		"/?limit=5&offset=10":   {Limit: 5, Offset: 10},
		"/?limit=500":           {Limit: maxPaginationLimit, Offset: 0},
		"/?limit=-1&offset=-10": {Limit: 20, Offset: 0},
	}
	for url, want := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, want, got, url)
	}
}

func TestParseID_WritesBadRequest(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Delete("/cart/:productId", func(c *fiber.Ctx) error {
		if _, err := s.parseID(c, "productId"); err != nil {
			return nil
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/cart/0", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "Invalid product ID", body.Error)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestRespondError_AccessDeniedBranch(t *testing.T) {
	app := fiber.New()
	app.Get("/gated", func(c *fiber.Ctx) error {
		return respondError(c, models.NewForbiddenError("You are not a member of this community"))
	})

	t.Run("api client gets 403 json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Accept", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.CodeForbidden, body.Code)
	})

	t.Run("browser is redirected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, accessDeniedPath, resp.Header.Get("Location"))
	})
}
