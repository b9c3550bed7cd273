package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/riskibarqy/skill-league/internal/config"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
)

const migrationSessionSuffix = "-migration"

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

// SchemaVersion is the applied migration version; Applied is false on an
// empty database.
type SchemaVersion struct {
	Applied bool `json:"applied"`
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// Migrator applies the SQL files in db/migrations to DB_URL.
type Migrator struct {
	m      *migrate.Migrate
	source string
	logger *logging.Logger
}

func NewMigrator(cfg config.Config, logger *logging.Logger) (*Migrator, error) {
	if logger == nil {
		logger = logging.Default()
	}
	dir, err := resolveMigrationsDir(cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	source := "file://" + filepath.ToSlash(dir)
	dbURL := normalizeDBURL(cfg.DBURL, migrationApplicationName(cfg.DBApplicationName))
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	logger.Info("migrator ready", "source", source, "db", dbNameFromURL(cfg.DBURL))
	return &Migrator{m: m, source: source, logger: logger}, nil
}

func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up())
}

func (m *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("down steps must be >= 1, got %d", steps)
	}
	return m.apply("down", m.m.Steps(-steps), "steps", steps)
}

func (m *Migrator) Goto(version uint) error {
	return m.apply("goto", m.m.Migrate(version), "version", version)
}

// Force sets the version without running SQL, clearing a dirty flag left by
// a failed migration.
func (m *Migrator) Force(version int) error {
	if version < 0 {
		return fmt.Errorf("version must be >= 0, got %d", version)
	}
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	m.logger.Warn("forced schema version", "version", version)
	return nil
}

func (m *Migrator) Version() (SchemaVersion, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("read schema version: %w", err)
	}
	return SchemaVersion{Applied: true, Version: version, Dirty: dirty}, nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (m *Migrator) apply(op string, err error, kv ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("schema already up to date", append([]any{"op", op}, kv...)...)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	m.logger.Info("schema migrated", append([]any{"op", op, "source", m.source}, kv...)...)
	return nil
}

func migrationApplicationName(base string) string {
	if base == "" {
		return ""
	}
	return base + migrationSessionSuffix
}

func resolveMigrationsDir(configured string) (string, error) {
	candidates := defaultMigrationDirs
	if configured != "" {
		candidates = []string{configured}
	}

	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked %v)", candidates)
}
