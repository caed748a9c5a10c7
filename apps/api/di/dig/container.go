package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/campusdesk/apps/api/echo"
	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
	"github.com/trezcool/campusdesk/core/session"
	logsvc "github.com/trezcool/campusdesk/services/logger"
	"github.com/trezcool/campusdesk/services/upstream"
	"github.com/trezcool/campusdesk/storage/database"
	sqlxrepos "github.com/trezcool/campusdesk/storage/database/sqlx"
	"github.com/trezcool/campusdesk/storage/memstore"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newResourceService(
	conf *core.Config,
	client *upstream.Client,
	cache *memstore.SnapshotStore,
	logger core.Logger,
) *resource.Service {
	return resource.NewService(conf.Listing, client, cache, logger)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(sqlxrepos.NewSessionRepository, dig.As(new(session.Repository))))
	must(c.Provide(upstream.NewClient))
	must(c.Provide(func(client *upstream.Client) session.Authenticator { return client }))
	must(c.Provide(memstore.NewSnapshotStore))
	must(c.Provide(newResourceService))
	must(c.Provide(session.NewService))
	must(c.Provide(func(svc *session.Service) echoapi.SessionService { return svc }))
	must(c.Provide(core.NewValidator))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
