// Package pdf genera la hoja de trabajo de un pedido para el taller.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + código      │  N° Pedido + estado + fecha  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PEDIDO: tipo / destinatario / entrega estimada              │
//	│  CLIENTE: nombre + contacto                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PRENDAS: Prenda | Configuración | Estado | Neto             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total / Pagado / Pendiente                         │
//	│  HISTORIAL: fecha | de → a | notas                           │
//	│  QR con el número de pedido                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Sastreria-api/internal/application/orders"
	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 40, Green: 40, Blue: 72}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabels = map[entity.OrderStatus]string{
	entity.StatusCreated:           "Creado",
	entity.StatusFabricOrdered:     "Tela pedida",
	entity.StatusFabricReceived:    "Tela recibida",
	entity.StatusFactoryOrdered:    "Pedido a fábrica",
	entity.StatusInProduction:      "En producción",
	entity.StatusFitting:           "Prueba",
	entity.StatusAdjustments:       "Arreglos",
	entity.StatusFinished:          "Terminado",
	entity.StatusDelivered:         "Entregado",
	entity.StatusIncident:          "Incidencia",
	entity.StatusCancelled:         "Cancelado",
	entity.StatusRequested:         "Solicitado a proveedor",
	entity.StatusSupplierDelivered: "Entregado por proveedor",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ orders.OrderSheetGenerator = (*OrderSheetGenerator)(nil)

// OrderSheetGenerator implementa orders.OrderSheetGenerator con Maroto v2.
type OrderSheetGenerator struct{}

// NewOrderSheetGenerator construye el generador.
func NewOrderSheetGenerator() *OrderSheetGenerator { return &OrderSheetGenerator{} }

// GenerateOrderSheet genera el PDF y devuelve sus bytes.
func (g *OrderSheetGenerator) GenerateOrderSheet(_ context.Context, data orders.OrderSheetData) ([]byte, error) {
	if data.Order == nil {
		return nil, fmt.Errorf("pdf: pedido nil")
	}
	storeName := "Sastrería"
	if data.Store != nil {
		storeName = data.Store.Name
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de trabajo "+data.Order.OrderNumber, true).
		WithAuthor(storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Order, data.Store))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderInfoRow(data.Order))
	m.AddRows(clientRow(data.Client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("PRENDAS"))
	m.AddRows(linesHeaderRow())
	m.AddRows(lineRows(data.Order.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data.Order))

	if len(data.History) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(sectionTitle("HISTORIAL DE ESTADOS"))
		m.AddRows(historyRows(data.History)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(35).Add(
		col.New(3).Add(code.NewQr(data.Order.OrderNumber, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(text.New("Escanear en el taller para localizar el pedido.", props.Text{
			Size: 8, Top: 4, Left: 3, Color: colorGray,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(o *entity.TailoringOrder, store *entity.Store) core.Row {
	name, storeCode := "Sastrería", ""
	if store != nil {
		name, storeCode = store.Name, store.Code
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Tienda: "+nonEmpty(storeCode, "-"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("HOJA DE TRABAJO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(o.OrderNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New(statusLabel(o.Status)+" · "+o.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func orderInfoRow(o *entity.TailoringOrder) core.Row {
	delivery := "-"
	if o.EstimatedDeliveryDate != nil {
		delivery = o.EstimatedDeliveryDate.Format("02/01/2006")
	}
	return row.New(12).Add(col.New(12).Add(
		text.New("PEDIDO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(fmt.Sprintf("Tipo: %s   |   Destinatario: %s   |   Entrega estimada: %s",
			o.OrderType, o.RecipientType, delivery,
		), props.Text{Size: 8, Top: 7, Color: colorGray}),
	))
}

func clientRow(c *entity.Client) core.Row {
	if c == nil {
		return row.New(8).Add(col.New(12).Add(
			text.New("Sin cliente asociado", props.Text{Size: 8, Top: 2, Color: colorGray}),
		))
	}
	return row.New(14).Add(col.New(12).Add(
		text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(c.FullName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		text.New(fmt.Sprintf("Tel: %s   |   Email: %s", nonEmpty(c.Phone, "-"), nonEmpty(c.Email, "-")),
			props.Text{Size: 8, Top: 12, Color: colorGray}),
	))
}

func sectionTitle(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))
}

func linesHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Prenda", 3, align.Left),
		h("Configuración", 5, align.Left),
		h("Estado", 2, align.Center),
		h("Neto", 2, align.Right),
	)
}

func lineRows(lines []*entity.TailoringOrderLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		cfg := configurationSummary(l.Configuration)
		height := 7.0
		if n := strings.Count(cfg, "\n"); n > 0 {
			height += float64(n) * 3.5
		}
		out = append(out, row.New(height).Add(
			col.New(3).Add(text.New(l.GarmentType, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(nonEmpty(cfg, "-"), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(statusLabel(l.Status), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatAmount(l.NetPrice()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(o *entity.TailoringOrder) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(label("Total:"), label("Pagado:"), label("Pendiente:")),
		col.New(3).Add(
			value(formatAmount(o.Total)),
			value(formatAmount(o.TotalPaid)),
			value(formatAmount(o.TotalPending)),
		),
	)
}

func historyRows(history []*entity.OrderStateHistory) []core.Row {
	out := make([]core.Row, 0, len(history))
	for _, h := range history {
		transition := statusLabel(h.NewStatus)
		if h.PreviousStatus != "" {
			transition = statusLabel(h.PreviousStatus) + " → " + transition
		}
		if h.LineID != "" {
			transition += " (prenda)"
		}
		out = append(out, row.New(5).Add(
			col.New(3).Add(text.New(h.ChangedAt.Format("02/01/2006 15:04"), props.Text{Size: 7, Top: 0.5, Color: colorGray})),
			col.New(4).Add(text.New(transition, props.Text{Size: 7, Top: 0.5})),
			col.New(5).Add(text.New(h.Notes, props.Text{Size: 7, Top: 0.5, Color: colorGray})),
		))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(s entity.OrderStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// configurationSummary "clave: valor" por línea, claves ordenadas.
func configurationSummary(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(parts, "\n")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount importe con puntos de miles y coma decimal. Ej: 1234567.5 → "1.234.567,50 €"
func formatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + formatMoney(intPart) + "," + frac + " €"
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
