package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

var _ repository.TailoringOrderRepository = (*TailoringOrderRepo)(nil)

// TailoringOrderRepo implementación de TailoringOrderRepository (usable con pool o tx).
// GetForUpdate y GetLineForUpdate solo bloquean dentro de una transacción.
type TailoringOrderRepo struct {
	q Querier
}

// NewTailoringOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTailoringOrderRepository(q Querier) *TailoringOrderRepo {
	return &TailoringOrderRepo{q: q}
}

const orderColumns = `
	id, order_number, order_type, recipient_type, status, client_id, store_id,
	estimated_delivery_date, discount_percentage, total, total_paid, total_pending, total_cost,
	COALESCE(notes, ''), COALESCE(created_by::text, ''), created_at, updated_at`

const lineColumns = `
	id, order_id, garment_type, COALESCE(line_type, ''), configuration, fabric_id, status,
	unit_price, discount_percentage, tax_rate, material_cost, labor_cost, factory_cost,
	created_at, updated_at`

// Create inserta la cabecera del pedido (sin líneas).
func (r *TailoringOrderRepo) Create(ctx context.Context, o *entity.TailoringOrder) error {
	query := `
		INSERT INTO tailoring_orders (
			id, order_number, order_type, recipient_type, status, client_id, store_id,
			estimated_delivery_date, discount_percentage, total, total_paid, total_pending, total_cost,
			notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.OrderType, o.RecipientType, string(o.Status), nullIfEmpty(o.ClientID), o.StoreID,
		o.EstimatedDeliveryDate, o.DiscountPercentage, o.Total, o.TotalPaid, o.TotalPending, o.TotalCost,
		o.Notes, nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return wrapPgError("insert tailoring order", err)
	}
	return nil
}

// CreateLine inserta una prenda.
func (r *TailoringOrderRepo) CreateLine(ctx context.Context, l *entity.TailoringOrderLine) error {
	query := `
		INSERT INTO tailoring_order_lines (
			id, order_id, garment_type, line_type, configuration, fabric_id, status,
			unit_price, discount_percentage, tax_rate, material_cost, labor_cost, factory_cost,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	cfg := l.Configuration
	if len(cfg) == 0 {
		cfg = []byte("{}")
	}
	_, err := r.q.Exec(ctx, query,
		l.ID, l.OrderID, l.GarmentType, nullIfEmpty(l.LineType), cfg, nullIfEmpty(l.FabricID), string(l.Status),
		l.UnitPrice, l.DiscountPercentage, l.TaxRate, l.MaterialCost, l.LaborCost, l.FactoryCost,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return wrapPgError("insert tailoring order line", err)
	}
	return nil
}

// GetByID obtiene el pedido con sus líneas.
func (r *TailoringOrderRepo) GetByID(ctx context.Context, id string) (*entity.TailoringOrder, error) {
	o, err := r.getOrder(ctx, "get tailoring order", `SELECT `+orderColumns+` FROM tailoring_orders WHERE id = $1`, id)
	if err != nil || o == nil {
		return o, err
	}
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM tailoring_order_lines WHERE order_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, wrapPgError("list order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, wrapPgError("scan order line", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("list order lines", err)
	}
	return o, nil
}

// GetForUpdate obtiene el pedido y bloquea la fila (SELECT FOR UPDATE).
func (r *TailoringOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.TailoringOrder, error) {
	return r.getOrder(ctx, "get tailoring order for update",
		`SELECT `+orderColumns+` FROM tailoring_orders WHERE id = $1 FOR UPDATE`, id)
}

// GetLineForUpdate obtiene la prenda y bloquea su fila.
func (r *TailoringOrderRepo) GetLineForUpdate(ctx context.Context, lineID string) (*entity.TailoringOrderLine, error) {
	row := r.q.QueryRow(ctx, `SELECT `+lineColumns+` FROM tailoring_order_lines WHERE id = $1 FOR UPDATE`, lineID)
	l, err := scanLine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapPgError("get order line for update", err)
	}
	return l, nil
}

// UpdateStatus actualiza el estado desnormalizado del pedido.
func (r *TailoringOrderRepo) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE tailoring_orders SET status = $2, updated_at = $3 WHERE id = $1`, orderID, string(status), at)
	if err != nil {
		return wrapPgError("update order status", err)
	}
	return nil
}

// UpdateLineStatus actualiza el estado de una prenda.
func (r *TailoringOrderRepo) UpdateLineStatus(ctx context.Context, lineID string, status entity.OrderStatus, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE tailoring_order_lines SET status = $2, updated_at = $3 WHERE id = $1`, lineID, string(status), at)
	if err != nil {
		return wrapPgError("update line status", err)
	}
	return nil
}

// List pedidos (sin líneas) más recientes primero, y el total que cumple el filtro.
func (r *TailoringOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.TailoringOrder, int, error) {
	where, args := orderFilterClause(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tailoring_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapPgError("count tailoring orders", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tailoring_orders%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapPgError("list tailoring orders", err)
	}
	defer rows.Close()
	list := []*entity.TailoringOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, wrapPgError("scan tailoring order", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// NextOrderNumber siguiente valor de tailoring_order_number_seq.
func (r *TailoringOrderRepo) NextOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('tailoring_order_number_seq')`).Scan(&n); err != nil {
		return 0, wrapPgError("next order number", err)
	}
	return n, nil
}

func (r *TailoringOrderRepo) getOrder(ctx context.Context, op, query, id string) (*entity.TailoringOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapPgError(op, err)
	}
	return o, nil
}

// orderFilterClause arma el WHERE con placeholders numerados.
func orderFilterClause(f repository.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	if len(f.StoreIDs) > 0 {
		args = append(args, f.StoreIDs)
		conds = append(conds, fmt.Sprintf("store_id = ANY($%d)", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanOrder(row pgx.Row) (*entity.TailoringOrder, error) {
	var o entity.TailoringOrder
	var clientID *string
	var status string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.OrderType, &o.RecipientType, &status, &clientID, &o.StoreID,
		&o.EstimatedDeliveryDate, &o.DiscountPercentage, &o.Total, &o.TotalPaid, &o.TotalPending, &o.TotalCost,
		&o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	if clientID != nil {
		o.ClientID = *clientID
	}
	return &o, nil
}

func scanLine(row pgx.Row) (*entity.TailoringOrderLine, error) {
	var l entity.TailoringOrderLine
	var fabricID *string
	var status string
	err := row.Scan(
		&l.ID, &l.OrderID, &l.GarmentType, &l.LineType, &l.Configuration, &fabricID, &status,
		&l.UnitPrice, &l.DiscountPercentage, &l.TaxRate, &l.MaterialCost, &l.LaborCost, &l.FactoryCost,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.OrderStatus(status)
	if fabricID != nil {
		l.FabricID = *fabricID
	}
	return &l, nil
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
