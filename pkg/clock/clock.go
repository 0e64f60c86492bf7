package clock

import (
	"sync"
	"time"
)

// Clock abstrae la hora actual para que los componentes con TTL puedan probarse sin sleeps.
type Clock interface {
	Now() time.Time
}

// System usa time.Now.
type System struct{}

// Now devuelve la hora del sistema.
func (System) Now() time.Time { return time.Now() }

// Fake es un reloj manual para tests. Seguro para uso concurrente.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake crea un reloj detenido en t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now devuelve la hora fijada.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance mueve el reloj hacia adelante.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
