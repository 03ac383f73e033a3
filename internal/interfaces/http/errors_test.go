package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/erp-core/internal/domain"
)

// Mapeo de errores de dominio a códigos HTTP, vía un handler que propaga el
// error recibido.
func TestErrorResponse_MapeoDeCodigos(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"entrada inválida", domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"duplicado", domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{"conflicto", domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"no autorizado", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{
			"stock insuficiente tipado",
			&domain.InsufficientStockError{ProductID: "p1", WarehouseID: "w1", Requested: 8, Available: 5},
			http.StatusConflict, "INSUFFICIENT_STOCK",
		},
		{
			"transición inválida tipada",
			&domain.InvalidTransitionError{OrderID: "o1", From: "Pending", To: "Delivered"},
			http.StatusConflict, "INVALID_TRANSITION",
		},
		{"error interno", errors.New("se cayó la base"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/t", func(ctx *fiber.Ctx) error {
				return errorResponse(ctx, c.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, c.wantStatus, resp.StatusCode)

			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, c.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

// El mensaje del error tipado de stock llega al cliente con los ids y las
// cantidades, para reportes precisos.
func TestErrorResponse_MensajeDeStockInsuficienteConContexto(t *testing.T) {
	app := fiber.New()
	app.Get("/t", func(ctx *fiber.Ctx) error {
		return errorResponse(ctx, &domain.InsufficientStockError{
			ProductID: "p1", WarehouseID: "w1", Requested: 8, Available: 5,
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Message, "p1")
	assert.Contains(t, body.Message, "w1")
	assert.Contains(t, body.Message, "solicitado 8")
	assert.Contains(t, body.Message, "disponible 5")
}
