package core

import (
	"fmt"
	"os"

	"agricore/internal/infra/persistence/memory"
	"agricore/internal/infra/persistence/postgres"
	"agricore/internal/infra/persistence/sqlite"
	"agricore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	AGRICORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	AGRICORE_SQLITE_PATH: path to sqlite file (default ./agricore.db)
//	AGRICORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (domain.PersistentStore, error) {
	driver := os.Getenv("AGRICORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		path := os.Getenv("AGRICORE_SQLITE_PATH")
		return sqlite.NewStore(path, engine)
	case StoragePostgres:
		dsn := os.Getenv("AGRICORE_POSTGRES_DSN")
		return postgres.NewStore(dsn, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
