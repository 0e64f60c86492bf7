package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
)

// SheetUseCase genera la hoja de trabajo (PDF) de un pedido para el taller.
type SheetUseCase struct {
	query      *QueryUseCase
	storeRepo  repository.StoreRepository
	clientRepo repository.ClientRepository
	generator  OrderSheetGenerator
}

// NewSheetUseCase construye el caso de uso.
func NewSheetUseCase(
	query *QueryUseCase,
	storeRepo repository.StoreRepository,
	clientRepo repository.ClientRepository,
	generator OrderSheetGenerator,
) *SheetUseCase {
	return &SheetUseCase{query: query, storeRepo: storeRepo, clientRepo: clientRepo, generator: generator}
}

// DownloadOrderSheet devuelve (pdf, nombre de archivo). Mismos permisos que GetOrder.
func (uc *SheetUseCase) DownloadOrderSheet(ctx context.Context, actorID, orderID string) ([]byte, string, error) {
	o, err := uc.query.GetOrder(ctx, actorID, orderID)
	if err != nil {
		return nil, "", err
	}
	history, err := uc.query.historyRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("hoja: obtener historial: %w", err)
	}
	store, err := uc.storeRepo.GetByID(ctx, o.StoreID)
	if err != nil {
		return nil, "", fmt.Errorf("hoja: obtener tienda: %w", err)
	}
	data := OrderSheetData{Order: o, Store: store, History: history}
	if o.ClientID != "" {
		client, err := uc.clientRepo.GetByID(ctx, o.ClientID)
		if err != nil {
			return nil, "", fmt.Errorf("hoja: obtener cliente: %w", err)
		}
		data.Client = client
	}

	pdf, err := uc.generator.GenerateOrderSheet(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("hoja: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("pedido_%s.pdf", o.OrderNumber), nil
}
