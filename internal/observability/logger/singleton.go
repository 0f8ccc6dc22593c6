package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu       sync.RWMutex
	instance *zap.Logger
)

// Init construye el logger global. Sólo la primera llamada tiene efecto;
// para reemplazarlo (tests) usar Set.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = build(cfg)
	}
}

// Set reemplaza el logger global y devuelve una función que restaura el anterior.
func Set(l *zap.Logger) (restore func()) {
	mu.Lock()
	prev := instance
	instance = l
	mu.Unlock()
	return func() {
		mu.Lock()
		instance = prev
		mu.Unlock()
	}
}

// L retorna el logger global. Sin Init previo arma uno dev/info.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	return L()
}

// Named retorna un logger hijo con nombre de componente.
func Named(name string) *zap.Logger { return L().Named(name) }

// With retorna un logger con campos fijos.
func With(fields ...zap.Field) *zap.Logger { return L().With(fields...) }

// S retorna la versión sugared (printf-style), usada por la CLI.
func S() *zap.SugaredLogger { return L().Sugar() }

// Sync flushea buffers pendientes. Llamar con defer en main.
func Sync() error {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}
