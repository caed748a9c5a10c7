package database

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"
	_ "modernc.org/sqlite"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/fs"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	migrationsDir = "migrations"
)

var (
	ErrUnknownEngine = errors.New("unknown database engine")

	pingAttempts = 30 // mockable
)

// gooseDialect maps a database engine to the dialect goose knows it by.
func gooseDialect(engine string) (string, error) {
	switch engine {
	case EngineSQLite:
		return "sqlite3", nil
	case EnginePostgres:
		return "postgres", nil
	}
	return "", errors.Wrap(ErrUnknownEngine, engine)
}

// Open connects to the configured database and waits for it to be ready.
func Open(conf *core.Config) (*sqlx.DB, error) {
	return OpenDSN(conf.Database.Engine, conf.Database.DSN)
}

func OpenDSN(engine, dsn string) (*sqlx.DB, error) {
	if _, err := gooseDialect(engine); err != nil {
		return nil, err
	}
	db, err := sqlx.Open(engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if engine == EngineSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	for attempts := 1; attempts <= pingAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB) error {
	return Run(db, "up")
}

// Run runs a goose command (up, down, redo, status, version...) against the embedded migrations.
func Run(db *sqlx.DB, command string, args ...string) error {
	dialect, err := gooseDialect(db.DriverName())
	if err != nil {
		return err
	}
	if err = goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err = goose.RunFS(command, db.DB, appfs.FS, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}
