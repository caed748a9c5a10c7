package main

import (
	"log"
	"os"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
	"github.com/trezcool/campusdesk/core/session"
	logsvc "github.com/trezcool/campusdesk/services/logger"
	"github.com/trezcool/campusdesk/services/upstream"
	"github.com/trezcool/campusdesk/storage/database"
	sqlxrepos "github.com/trezcool/campusdesk/storage/database/sqlx"
	"github.com/trezcool/campusdesk/storage/memstore"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	if len(os.Args) < 2 || os.Args[1] != "migrate" {
		errAndDie(database.Migrate(db))
	}

	// set up services
	client := upstream.NewClient(conf)
	validate, _ := core.NewValidator()

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		sessions:  session.NewService(sqlxrepos.NewSessionRepository(db), client, conf, svcLogger),
		resources: resource.NewService(conf.Listing, client, memstore.NewSnapshotStore(), svcLogger),
		validate:  validate,
		out:       os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", fieldErrors(err))
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
