package catalog

import (
	"context"
	"fmt"
)

// NewStore picks a backend by name. The sqlite backend is seeded with Defaults()
// the first time it is opened on an empty database.
func NewStore(ctx context.Context, kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewDefaultStore(), nil
	case "sqlite":
		s := NewSQLiteStore(sqlitePath)
		if err := s.Init(ctx); err != nil {
			return nil, fmt.Errorf("open catalog %s: %w", sqlitePath, err)
		}
		existing, err := s.List(ctx)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		if len(existing) == 0 {
			if err := Seed(ctx, s, Defaults()); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported catalog backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
