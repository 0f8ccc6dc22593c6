package pg

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/hallapmark/vaiki-backend/internal/observability/logger"
	migrations "github.com/hallapmark/vaiki-backend/migrations/postgres"
)

// migrationLockID es la clave del pg_advisory_lock que serializa migraciones
// entre réplicas que arrancan a la vez.
const migrationLockID int64 = 0x7661696b69 // "vaiki"

// Migrate aplica los scripts embebidos. Devuelve cuántos se ejecutaron.
// Los scripts son idempotentes (IF NOT EXISTS), se corren todos siempre.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	return s.migrateFS(ctx, migrations.FS)
}

// MigrateDown revierte los últimos `steps` scripts (0 = todos).
func (s *Store) MigrateDown(ctx context.Context, steps int) (int, error) {
	return s.migrateDownFS(ctx, migrations.FS, steps)
}

func (s *Store) migrateFS(ctx context.Context, fsys fs.FS) (int, error) {
	files, err := listScripts(fsys, "*_up.sql")
	if err != nil {
		return 0, err
	}
	n, err := s.runLocked(ctx, fsys, files)
	if err == nil {
		logger.Named("pg").Info("migrations applied", logger.Count(n))
	}
	return n, err
}

func (s *Store) migrateDownFS(ctx context.Context, fsys fs.FS, steps int) (int, error) {
	files, err := listScripts(fsys, "*_down.sql")
	if err != nil {
		return 0, err
	}
	for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	n, err := s.runLocked(ctx, fsys, files)
	if err == nil {
		logger.Named("pg").Warn("migrations reverted", logger.Count(n))
	}
	return n, err
}

func listScripts(fsys fs.FS, pattern string) ([]string, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// runLocked ejecuta los scripts en el orden dado bajo el advisory lock.
// Los vacíos no cuentan.
func (s *Store) runLocked(ctx context.Context, fsys fs.FS, files []string) (int, error) {
	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conn, err := s.pool.Acquire(lockCtx)
	if err != nil {
		return 0, fmt.Errorf("pg: acquire for migrations: %w", err)
	}
	defer conn.Release()

	// el lock es por sesión: usar la misma conexión para lock/unlock
	if _, err := conn.Exec(lockCtx, `SELECT pg_advisory_lock($1)`, migrationLockID); err != nil {
		return 0, fmt.Errorf("pg: migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID); err != nil {
			logger.Named("pg").Warn("release migration lock failed", logger.Err(err))
		}
	}()

	var applied int
	for _, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return applied, err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		start := time.Now()
		if _, err := conn.Exec(ctx, string(b)); err != nil {
			return applied, fmt.Errorf("pg: exec %s: %w", f, err)
		}
		logger.Named("pg").Debug("migration script", logger.String("file", f), logger.Duration(time.Since(start)))
		applied++
	}
	return applied, nil
}
