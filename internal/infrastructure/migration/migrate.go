package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank import required for PostgreSQL driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator интерфейс над migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine фабрика мигратора, в тестах подменяется моком
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

// Migration применяет схему папок, сообщений и файлов из каталога migrations
type Migration struct {
	path        string
	databaseURI string
	engine      MigrationEngine
}

func NewMigration(path, databaseURI string, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		path:        path,
		databaseURI: databaseURI,
		engine:      engine,
	}
}

// DefaultEngine мигратор на golang-migrate с источником из файлов
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

func (mg *Migration) Up() (err error) {
	m, err := mg.engine("file://"+mg.path, mg.databaseURI)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("migration source error: %w", serr))
		}
		if dberr != nil {
			err = errors.Join(err, fmt.Errorf("migration database error: %w", dberr))
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
