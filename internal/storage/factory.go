package storage

import "fmt"

// DefaultStoreKind is the run store used when no backend is requested.
func DefaultStoreKind() string {
	return "memory"
}

// NewStore builds a run store for evaluation reports. The memory backend
// keeps runs for the life of the process; sqlite persists them at
// sqlitePath.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported run store backend: %q (want memory or sqlite)", kind)
	}
}

// CloseIfSupported closes run stores that hold resources, such as the
// sqlite backend. Stores without a Close method are left alone.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
