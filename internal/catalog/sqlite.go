package catalog

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"robosim/internal/sim"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (sim.ComponentDescriptor, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return sim.ComponentDescriptor{}, false, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, type, name, power_draw, capabilities FROM components WHERE id = ?`, id)
	d, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sim.ComponentDescriptor{}, false, nil
	}
	if err != nil {
		return sim.ComponentDescriptor{}, false, err
	}
	return d, true, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]sim.ComponentDescriptor, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, type, name, power_draw, capabilities FROM components ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.ComponentDescriptor
	for rows.Next() {
		d, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Put(ctx context.Context, desc sim.ComponentDescriptor) error {
	if err := validate(desc); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO components (id, type, name, power_draw, capabilities)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			power_draw = excluded.power_draw,
			capabilities = excluded.capabilities
	`, desc.ID, desc.Type, desc.Name, desc.PowerDraw, int64(desc.Capabilities))
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComponent(row scanner) (sim.ComponentDescriptor, error) {
	var (
		d    sim.ComponentDescriptor
		caps int64
	)
	if err := row.Scan(&d.ID, &d.Type, &d.Name, &d.PowerDraw, &caps); err != nil {
		return sim.ComponentDescriptor{}, err
	}
	d.Capabilities = sim.CapabilitySet(caps)
	return d, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			power_draw REAL NOT NULL,
			capabilities INTEGER NOT NULL DEFAULT 0
		);
	`)
	return err
}
