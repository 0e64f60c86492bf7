package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Sastreria-api/internal/application/audit"
	"github.com/jhoicas/Sastreria-api/internal/domain"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
	"github.com/jhoicas/Sastreria-api/pkg/clock"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

// CreateOrderUseCase da de alta un pedido con sus prendas en estado created y la primera
// entrada del historial, todo en una transacción.
type CreateOrderUseCase struct {
	txRunner   TxRunner
	authz      Authorizer
	storeRepo  repository.StoreRepository
	clientRepo repository.ClientRepository
	audit      AuditRecorder
	clock      clock.Clock
	log        *logger.Logger
}

// NewCreateOrderUseCase construye el caso de uso.
func NewCreateOrderUseCase(
	txRunner TxRunner,
	authz Authorizer,
	storeRepo repository.StoreRepository,
	clientRepo repository.ClientRepository,
	auditRec AuditRecorder,
	clk clock.Clock,
	log *logger.Logger,
) *CreateOrderUseCase {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateOrderUseCase{
		txRunner:   txRunner,
		authz:      authz,
		storeRepo:  storeRepo,
		clientRepo: clientRepo,
		audit:      auditRec,
		clock:      clk,
		log:        log,
	}
}

// CreateOrderInput datos del pedido.
type CreateOrderInput struct {
	ActorID               string
	OrderType             string
	RecipientType         string
	ClientID              string
	StoreID               string
	EstimatedDeliveryDate *time.Time
	DiscountPercentage    decimal.Decimal
	TotalPaid             decimal.Decimal
	Notes                 string
	Lines                 []CreateOrderLineInput
}

// CreateOrderLineInput una prenda.
type CreateOrderLineInput struct {
	GarmentType        string
	LineType           string
	Configuration      map[string]any
	FabricID           string
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	TaxRate            decimal.Decimal
	MaterialCost       decimal.Decimal
	LaborCost          decimal.Decimal
	FactoryCost        decimal.Decimal
}

var orderTypes = map[string]bool{
	entity.OrderTypeArtesanal:  true,
	entity.OrderTypeIndustrial: true,
	entity.OrderTypeProveedor:  true,
	entity.OrderTypeOficial:    true,
}

var recipientTypes = map[string]bool{
	entity.RecipientCliente: true,
	entity.RecipientOficial: true,
	entity.RecipientStock:   true,
}

// FormatOrderNumber formato legible del número de pedido: SA-<año>-<secuencia 6 dígitos>.
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("SA-%d-%06d", year, seq)
}

// CreateOrder valida, calcula totales y persiste.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.TailoringOrder, error) {
	if err := uc.authz.RequirePermission(ctx, in.ActorID, entity.PermOrdersCreate); err != nil {
		return nil, err
	}
	if ve := validateCreate(in); ve.HasErrors() {
		return nil, ve
	}
	if err := uc.authz.RequireStoreAccess(ctx, in.ActorID, in.StoreID); err != nil {
		return nil, err
	}

	store, err := uc.storeRepo.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, fmt.Errorf("obtener tienda: %w", err)
	}
	if store == nil || !store.Active {
		return nil, domain.NewValidationError("store_id", "tienda inexistente o inactiva")
	}
	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
		if err != nil {
			return nil, fmt.Errorf("obtener cliente: %w", err)
		}
		if client == nil {
			return nil, domain.NewValidationError("client_id", "cliente inexistente")
		}
	}

	now := uc.clock.Now().UTC()
	o := &entity.TailoringOrder{
		ID:                    uuid.New().String(),
		OrderType:             in.OrderType,
		RecipientType:         in.RecipientType,
		Status:                entity.StatusCreated,
		ClientID:              in.ClientID,
		StoreID:               in.StoreID,
		EstimatedDeliveryDate: in.EstimatedDeliveryDate,
		DiscountPercentage:    in.DiscountPercentage,
		TotalPaid:             in.TotalPaid,
		Notes:                 in.Notes,
		CreatedBy:             in.ActorID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	for _, li := range in.Lines {
		cfg, err := json.Marshal(li.Configuration)
		if err != nil {
			return nil, domain.NewValidationError("lines.configuration", "configuración no serializable")
		}
		o.Lines = append(o.Lines, &entity.TailoringOrderLine{
			ID:                 uuid.New().String(),
			OrderID:            o.ID,
			GarmentType:        li.GarmentType,
			LineType:           li.LineType,
			Configuration:      cfg,
			FabricID:           li.FabricID,
			Status:             entity.StatusCreated,
			UnitPrice:          li.UnitPrice,
			DiscountPercentage: li.DiscountPercentage,
			TaxRate:            li.TaxRate,
			MaterialCost:       li.MaterialCost,
			LaborCost:          li.LaborCost,
			FactoryCost:        li.FactoryCost,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	o.RecalculateTotals()
	if o.TotalPaid.GreaterThan(o.Total) {
		return nil, domain.NewValidationError("total_paid", fmt.Sprintf("no puede superar el total del pedido (%s)", o.Total.StringFixed(2)))
	}

	err = uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.TailoringOrderRepository,
		historyRepo repository.OrderStateHistoryRepository,
	) error {
		seq, err := orderRepo.NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		o.OrderNumber = FormatOrderNumber(now.Year(), seq)
		if err := orderRepo.Create(ctx, o); err != nil {
			return err
		}
		for _, l := range o.Lines {
			if err := orderRepo.CreateLine(ctx, l); err != nil {
				return err
			}
		}
		return historyRepo.Append(ctx, &entity.OrderStateHistory{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			NewStatus: entity.StatusCreated,
			ChangedBy: in.ActorID,
			Notes:     "pedido creado",
			ChangedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.audit != nil {
		uc.audit.Record(ctx, entity.AuditLog{
			UserID:     in.ActorID,
			Action:     entity.AuditActionCreate,
			EntityType: "tailoring_order",
			EntityID:   o.ID,
			Changes: audit.Diff(nil, map[string]any{
				"order_number": o.OrderNumber,
				"status":       string(o.Status),
				"total":        o.Total.String(),
			}),
			CreatedAt: now,
		})
	}
	uc.log.Info().Str("order_id", o.ID).Str("order_number", o.OrderNumber).Str("store_id", o.StoreID).Msg("pedido creado")
	return o, nil
}

func validateCreate(in CreateOrderInput) *domain.ValidationError {
	ve := &domain.ValidationError{}
	if !orderTypes[in.OrderType] {
		ve.Add("order_type", "debe ser artesanal, industrial, proveedor u oficial")
	}
	if !recipientTypes[in.RecipientType] {
		ve.Add("recipient_type", "debe ser cliente, oficial o stock")
	}
	if in.RecipientType == entity.RecipientCliente && in.ClientID == "" {
		ve.Add("client_id", "es requerido para pedidos de cliente")
	}
	if in.StoreID == "" {
		ve.Add("store_id", "es requerido")
	}
	if !validPercentage(in.DiscountPercentage) {
		ve.Add("discount_percentage", "debe estar entre 0 y 100")
	}
	if in.TotalPaid.IsNegative() {
		ve.Add("total_paid", "no puede ser negativo")
	}
	if len(in.Lines) == 0 {
		ve.Add("lines", "el pedido debe tener al menos una prenda")
	}
	for i, l := range in.Lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		if l.GarmentType == "" {
			ve.Add(prefix+"garment_type", "es requerido")
		}
		if l.UnitPrice.IsNegative() {
			ve.Add(prefix+"unit_price", "no puede ser negativo")
		}
		if !validPercentage(l.DiscountPercentage) {
			ve.Add(prefix+"discount_percentage", "debe estar entre 0 y 100")
		}
		if l.TaxRate.IsNegative() {
			ve.Add(prefix+"tax_rate", "no puede ser negativo")
		}
		if l.MaterialCost.IsNegative() || l.LaborCost.IsNegative() || l.FactoryCost.IsNegative() {
			ve.Add(prefix+"costs", "los costos no pueden ser negativos")
		}
	}
	return ve
}

func validPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(decimal.NewFromInt(100))
}
