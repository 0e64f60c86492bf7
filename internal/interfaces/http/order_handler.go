package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Sastreria-api/internal/application/dto"
	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// Contratos que la capa HTTP necesita de los casos de uso de pedidos.
type (
	orderCreator interface {
		CreateOrder(ctx context.Context, in orders.CreateOrderInput) (*entity.TailoringOrder, error)
	}
	orderQuerier interface {
		GetOrder(ctx context.Context, actorID, orderID string) (*entity.TailoringOrder, error)
		ListOrders(ctx context.Context, actorID string, in orders.ListOrdersInput) ([]*entity.TailoringOrder, int, error)
		History(ctx context.Context, actorID, orderID string) ([]*entity.OrderStateHistory, error)
	}
	statusChanger interface {
		ChangeStatus(ctx context.Context, in orders.ChangeStatusInput) (*entity.OrderStateHistory, error)
	}
	sheetDownloader interface {
		DownloadOrderSheet(ctx context.Context, actorID, orderID string) ([]byte, string, error)
	}
)

// OrderHandler maneja pedidos de sastrería.
type OrderHandler struct {
	create  orderCreator
	query   orderQuerier
	changer statusChanger
	sheet   sheetDownloader
	log     *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(create orderCreator, query orderQuerier, changer statusChanger, sheet sheetDownloader, log *logger.Logger) *OrderHandler {
	return &OrderHandler{create: create, query: query, changer: changer, sheet: sheet, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateOrderRequest  true  "pedido y prendas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := parseAndValidate(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]orders.CreateOrderLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, orders.CreateOrderLineInput{
			GarmentType:        l.GarmentType,
			LineType:           l.LineType,
			Configuration:      l.Configuration,
			FabricID:           l.FabricID,
			UnitPrice:          l.UnitPrice,
			DiscountPercentage: l.DiscountPercentage,
			TaxRate:            l.TaxRate,
			MaterialCost:       l.MaterialCost,
			LaborCost:          l.LaborCost,
			FactoryCost:        l.FactoryCost,
		})
	}
	o, err := h.create.CreateOrder(c.UserContext(), orders.CreateOrderInput{
		ActorID:               GetUserID(c),
		OrderType:             in.OrderType,
		RecipientType:         in.RecipientType,
		ClientID:              in.ClientID,
		StoreID:               in.StoreID,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		DiscountPercentage:    in.DiscountPercentage,
		TotalPaid:             in.TotalPaid,
		Notes:                 in.Notes,
		Lines:                 lines,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(o))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        store_id  query  string  false  "tienda"
// @Param        status    query  string  false  "estado"
// @Param        limit     query  int     false  "máx. 100"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if err := validateStruct(page); err != nil {
		return writeError(c, h.log, err)
	}
	page.DefaultPage()
	list, total, err := h.query.ListOrders(c.UserContext(), GetUserID(c), orders.ListOrdersInput{
		StoreID: c.Query("store_id"),
		Status:  c.Query("status"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// GetByID godoc
// @Summary      Obtener pedido con sus prendas
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.query.GetOrder(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toOrderResponse(o))
}

// History godoc
// @Summary      Historial de estados del pedido
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}   dto.StateHistoryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/history [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	list, err := h.query.History(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StateHistoryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toHistoryResponse(e))
	}
	return c.JSON(out)
}

// Sheet godoc
// @Summary      Hoja de trabajo del pedido (PDF)
// @Tags         orders
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/sheet [get]
func (h *OrderHandler) Sheet(c *fiber.Ctx) error {
	pdf, filename, err := h.sheet.DownloadOrderSheet(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

// ChangeStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "ID del pedido"
// @Param        body  body  dto.ChangeStatusRequest  true  "nuevo estado y notas"
// @Success      200   {object}  dto.StateHistoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *fiber.Ctx) error {
	return h.changeStatus(c, "")
}

// ChangeLineStatus godoc
// @Summary      Cambiar estado de una prenda
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string                   true  "ID del pedido"
// @Param        lineId  path  string                   true  "ID de la prenda"
// @Param        body    body  dto.ChangeStatusRequest  true  "nuevo estado y notas"
// @Success      200     {object}  dto.StateHistoryResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lines/{lineId}/status [patch]
func (h *OrderHandler) ChangeLineStatus(c *fiber.Ctx) error {
	return h.changeStatus(c, c.Params("lineId"))
}

func (h *OrderHandler) changeStatus(c *fiber.Ctx, lineID string) error {
	var in dto.ChangeStatusRequest
	if err := parseAndValidate(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	entry, err := h.changer.ChangeStatus(c.UserContext(), orders.ChangeStatusInput{
		ActorID:   GetUserID(c),
		OrderID:   c.Params("id"),
		LineID:    lineID,
		NewStatus: in.NewStatus,
		Notes:     in.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toHistoryResponse(entry))
}

func toOrderResponse(o *entity.TailoringOrder) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:                    o.ID,
		OrderNumber:           o.OrderNumber,
		OrderType:             o.OrderType,
		RecipientType:         o.RecipientType,
		Status:                string(o.Status),
		ClientID:              o.ClientID,
		StoreID:               o.StoreID,
		EstimatedDeliveryDate: o.EstimatedDeliveryDate,
		DiscountPercentage:    o.DiscountPercentage,
		Total:                 o.Total,
		TotalPaid:             o.TotalPaid,
		TotalPending:          o.TotalPending,
		TotalCost:             o.TotalCost,
		Notes:                 o.Notes,
		CreatedBy:             o.CreatedBy,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, dto.OrderLineResponse{
			ID:                 l.ID,
			GarmentType:        l.GarmentType,
			LineType:           l.LineType,
			Configuration:      l.Configuration,
			FabricID:           l.FabricID,
			Status:             string(l.Status),
			UnitPrice:          l.UnitPrice,
			DiscountPercentage: l.DiscountPercentage,
			TaxRate:            l.TaxRate,
			NetPrice:           l.NetPrice(),
			Cost:               l.Cost(),
		})
	}
	return out
}

func toHistoryResponse(e *entity.OrderStateHistory) dto.StateHistoryResponse {
	out := dto.StateHistoryResponse{
		ID:        e.ID,
		OrderID:   e.OrderID,
		LineID:    e.LineID,
		NewStatus: string(e.NewStatus),
		ChangedBy: e.ChangedBy,
		Notes:     e.Notes,
		ChangedAt: e.ChangedAt,
	}
	if e.PreviousStatus != "" {
		prev := string(e.PreviousStatus)
		out.PreviousStatus = &prev
	}
	return out
}
