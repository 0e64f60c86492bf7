package audit

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Sastreria-api/internal/domain/entity"
	"github.com/jhoicas/Sastreria-api/internal/domain/repository"
	"github.com/jhoicas/Sastreria-api/pkg/clock"
	"github.com/jhoicas/Sastreria-api/pkg/logger"
)

const writeTimeout = 5 * time.Second

// Recorder emite entradas de auditoría sin bloquear ni afectar la operación principal:
// se escriben en segundo plano y los fallos solo se registran en el log.
type Recorder struct {
	repo  repository.AuditRepository
	clock clock.Clock
	log   *logger.Logger
	wg    sync.WaitGroup
}

// NewRecorder construye el recorder. repo nil desactiva la auditoría.
func NewRecorder(repo repository.AuditRepository, clk clock.Clock, log *logger.Logger) *Recorder {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, clock: clk, log: log}
}

// Record encola la escritura. Nunca devuelve error.
func (r *Recorder) Record(ctx context.Context, entry entity.AuditLog) {
	if r == nil || r.repo == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now().UTC()
	}
	// La petición puede terminar antes que la escritura.
	bg := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.log.Error().Interface("panic", p).Str("entity_id", entry.EntityID).Msg("auditoría: panic al escribir")
			}
		}()
		wctx, cancel := context.WithTimeout(bg, writeTimeout)
		defer cancel()
		if err := r.repo.Create(wctx, &entry); err != nil {
			r.log.Warn().Err(err).
				Str("action", entry.Action).
				Str("entity_type", entry.EntityType).
				Str("entity_id", entry.EntityID).
				Msg("auditoría: no se pudo registrar")
		}
	}()
}

// Wait bloquea hasta que terminen las escrituras pendientes (apagado y tests).
func (r *Recorder) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

// Diff compara dos instantáneas campo a campo y devuelve solo los campos que cambiaron.
// Un campo ausente en una de las dos se reporta con nil en ese lado.
func Diff(before, after map[string]any) map[string]entity.FieldChange {
	changes := make(map[string]entity.FieldChange)
	for k, nv := range after {
		ov, ok := before[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			changes[k] = entity.FieldChange{Old: ov, New: nv}
		}
	}
	for k, ov := range before {
		if _, ok := after[k]; !ok {
			changes[k] = entity.FieldChange{Old: ov, New: nil}
		}
	}
	return changes
}
