package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Sastreria-api/internal/application/dto"
	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/internal/domain"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrders struct {
	changeErr  error
	lastChange orders.ChangeStatusInput
	lastCreate orders.CreateOrderInput
	lastList   orders.ListOrdersInput
}

func (f *fakeOrders) CreateOrder(_ context.Context, in orders.CreateOrderInput) (*entity.TailoringOrder, error) {
	f.lastCreate = in
	return &entity.TailoringOrder{ID: "o1", OrderNumber: "SA-2026-000001", Status: entity.StatusCreated, StoreID: in.StoreID}, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, _, orderID string) (*entity.TailoringOrder, error) {
	if orderID != "o1" {
		return nil, domain.ErrNotFound
	}
	return &entity.TailoringOrder{ID: "o1", Status: entity.StatusFitting, Lines: []*entity.TailoringOrderLine{
		{ID: "l1", GarmentType: "americana", Status: entity.StatusFitting},
	}}, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, _ string, in orders.ListOrdersInput) ([]*entity.TailoringOrder, int, error) {
	f.lastList = in
	return []*entity.TailoringOrder{{ID: "o1"}}, 7, nil
}

func (f *fakeOrders) History(_ context.Context, _, _ string) ([]*entity.OrderStateHistory, error) {
	return []*entity.OrderStateHistory{
		{ID: "h1", OrderID: "o1", NewStatus: entity.StatusCreated},
		{ID: "h2", OrderID: "o1", PreviousStatus: entity.StatusCreated, NewStatus: entity.StatusFitting},
	}, nil
}

func (f *fakeOrders) ChangeStatus(_ context.Context, in orders.ChangeStatusInput) (*entity.OrderStateHistory, error) {
	f.lastChange = in
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return &entity.OrderStateHistory{
		ID: "h2", OrderID: in.OrderID, LineID: in.LineID,
		PreviousStatus: entity.StatusCreated, NewStatus: entity.OrderStatus(in.NewStatus),
		ChangedBy: in.ActorID, Notes: in.Notes, ChangedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeOrders) DownloadOrderSheet(_ context.Context, _, orderID string) ([]byte, string, error) {
	return []byte("%PDF-1.4"), "pedido_SA-2026-000001.pdf", nil
}

func newOrderApp(f *fakeOrders) *fiber.App {
	app := fiber.New()
	h := NewOrderHandler(f, f, f, f, logger.Nop())
	withUser := func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, "u1")
		return c.Next()
	}
	g := app.Group("/api/orders", withUser)
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/:id", h.GetByID)
	g.Get("/:id/history", h.History)
	g.Get("/:id/sheet", h.Sheet)
	g.Patch("/:id/status", h.ChangeStatus)
	g.Patch("/:id/lines/:lineId/status", h.ChangeLineStatus)
	return app
}

func send(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambio de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestChangeStatus_OK(t *testing.T) {
	f := &fakeOrders{}
	resp, body := send(t, newOrderApp(f), http.MethodPatch, "/api/orders/o1/status",
		map[string]string{"new_status": "fitting", "notes": "first fitting scheduled"})

	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, orders.ChangeStatusInput{
		ActorID: "u1", OrderID: "o1", NewStatus: "fitting", Notes: "first fitting scheduled",
	}, f.lastChange)

	var out dto.StateHistoryResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.PreviousStatus)
	assert.Equal(t, "created", *out.PreviousStatus)
	assert.Equal(t, "fitting", out.NewStatus)
}

func TestChangeLineStatus_PasaLineID(t *testing.T) {
	f := &fakeOrders{}
	resp, _ := send(t, newOrderApp(f), http.MethodPatch, "/api/orders/o1/lines/l1/status",
		map[string]string{"new_status": "in_production"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "l1", f.lastChange.LineID)
}

func TestChangeStatus_SinNewStatus_Retorna400ConCampos(t *testing.T) {
	f := &fakeOrders{}
	resp, body := send(t, newOrderApp(f), http.MethodPatch, "/api/orders/o1/status", map[string]string{"notes": "x"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Fields, "new_status")
	assert.Empty(t, f.lastChange.OrderID, "no debe llegar al caso de uso")
}

func TestChangeStatus_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewValidationError("new_status", "estado desconocido"), http.StatusBadRequest, "VALIDATION"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{fmt.Errorf("%w: falta el permiso orders.edit", domain.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: created → delivered", domain.ErrInvalidTransition), http.StatusConflict, "INVALID_TRANSITION"},
		{fmt.Errorf("update: %w", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{errors.New("pq: password authentication failed for user admin"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			f := &fakeOrders{changeErr: tc.err}
			resp, body := send(t, newOrderApp(f), http.MethodPatch, "/api/orders/o1/status", map[string]string{"new_status": "fitting"})

			assert.Equal(t, tc.status, resp.StatusCode)
			var out dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tc.code, out.Code)
			assert.NotContains(t, string(body), "password authentication", "los 500 no exponen detalle interno")
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta, consulta y PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_ValidacionDeTags(t *testing.T) {
	f := &fakeOrders{}
	resp, body := send(t, newOrderApp(f), http.MethodPost, "/api/orders/", map[string]any{
		"order_type":     "express",
		"recipient_type": "cliente",
		"store_id":       "no-uuid",
		"lines":          []map[string]any{{"unit_price": "10"}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Fields, "order_type")
	assert.Contains(t, out.Fields, "store_id")
	assert.Contains(t, out.Fields, "lines[0].garment_type")
}

func TestCreateOrder_Created(t *testing.T) {
	f := &fakeOrders{}
	resp, body := send(t, newOrderApp(f), http.MethodPost, "/api/orders/", map[string]any{
		"order_type":     "artesanal",
		"recipient_type": "stock",
		"store_id":       "6f1c2a9e-3b1d-4c55-9a7e-1d2f3a4b5c6d",
		"lines": []map[string]any{
			{"garment_type": "americana", "unit_price": "500", "tax_rate": "21", "configuration": map[string]any{"solapa": "pico"}},
		},
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "u1", f.lastCreate.ActorID)
	require.Len(t, f.lastCreate.Lines, 1)
	assert.Equal(t, "500", f.lastCreate.Lines[0].UnitPrice.String())
	assert.Equal(t, "pico", f.lastCreate.Lines[0].Configuration["solapa"])
}

func TestListOrders_Paginacion(t *testing.T) {
	f := &fakeOrders{}
	resp, body := send(t, newOrderApp(f), http.MethodGet, "/api/orders/?status=fitting&limit=5&offset=10&store_id=s1", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, orders.ListOrdersInput{StoreID: "s1", Status: "fitting", Limit: 5, Offset: 10}, f.lastList)
	var out dto.OrderListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 7, out.Page.Total)
	assert.Len(t, out.Items, 1)

	resp, _ = send(t, newOrderApp(f), http.MethodGet, "/api/orders/?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOrder_YHistorial(t *testing.T) {
	f := &fakeOrders{}
	app := newOrderApp(f)

	resp, body := send(t, app, http.MethodGet, "/api/orders/o1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var o dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &o))
	require.Len(t, o.Lines, 1)

	resp, _ = send(t, app, http.MethodGet, "/api/orders/o9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = send(t, app, http.MethodGet, "/api/orders/o1/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var h []map[string]any
	require.NoError(t, json.Unmarshal(body, &h))
	require.Len(t, h, 2)
	assert.Nil(t, h[0]["previous_status"], "alta del pedido: previous_status null")
	assert.Equal(t, "created", h[1]["previous_status"])
}

func TestSheet_DevuelvePDF(t *testing.T) {
	resp, body := send(t, newOrderApp(&fakeOrders{}), http.MethodGet, "/api/orders/o1/sheet", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "pedido_SA-2026-000001.pdf")
	assert.Equal(t, "%PDF-1.4", string(body))
}
