// Package quota enforces the plan limits on slide generation and deck
// downloads. Counters live in the usage_counters table so they survive
// restarts.
package quota

import (
	"database/sql"
	"fmt"
	"sync"
)

// Usage kinds tracked in the counters table.
const (
	KindGeneration = "generation"
	KindDownload   = "download"
)

// Gate answers whether a metered action is still within the plan limits.
// An action is allowed while used < limit; a limit of 0 means unlimited.
type Gate interface {
	CanGenerate() (bool, error)
	CanDownload() (bool, error)
	IncrementUsage(kind string) error
}

// Limits holds the configured plan ceilings.
type Limits struct {
	Generations int
	Downloads   int
}

// SQLGate checks counters stored in SQLite.
type SQLGate struct {
	mu     sync.Mutex
	db     *sql.DB
	limits Limits
}

// NewSQLGate creates a gate backed by the given database handle.
func NewSQLGate(db *sql.DB, limits Limits) *SQLGate {
	return &SQLGate{db: db, limits: limits}
}

// CanGenerate reports whether another generation run is allowed.
func (g *SQLGate) CanGenerate() (bool, error) {
	return g.allowed(KindGeneration, g.limits.Generations)
}

// CanDownload reports whether another export download is allowed.
func (g *SQLGate) CanDownload() (bool, error) {
	return g.allowed(KindDownload, g.limits.Downloads)
}

func (g *SQLGate) allowed(kind string, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	used, err := g.used(kind)
	if err != nil {
		return false, err
	}
	return used < limit, nil
}

func (g *SQLGate) used(kind string) (int, error) {
	var used int
	err := g.db.QueryRow(`SELECT used FROM usage_counters WHERE kind = ?`, kind).Scan(&used)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage counter %s: %w", kind, err)
	}
	return used, nil
}

// IncrementUsage records one consumed unit of the given kind.
func (g *SQLGate) IncrementUsage(kind string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.db.Exec(`
		INSERT INTO usage_counters (kind, used, updated_at) VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(kind) DO UPDATE SET used = used + 1, updated_at = CURRENT_TIMESTAMP`,
		kind)
	if err != nil {
		return fmt.Errorf("failed to increment usage counter %s: %w", kind, err)
	}
	return nil
}
