package main

import (
	"log"
	"os"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/admin"
	"github.com/mkulima/kilimo/core/allocation"
	"github.com/mkulima/kilimo/core/identity"
	"github.com/mkulima/kilimo/storage/document"
	"github.com/mkulima/kilimo/storage/repos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := document.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	st := document.NewStore(db)
	traineeRepo := repos.NewTraineeRepo(st)
	roomRepo := repos.NewRoomRepo(st)
	tagRepo := repos.NewTagRepo(st)

	// start CLI
	cli := commandLine{
		db:            db.DB,
		adminSvc:      admin.NewService(repos.NewAdminRepo(st)),
		allocationSvc: allocation.NewService(traineeRepo, roomRepo, tagRepo),
		identitySvc: identity.NewService(
			repos.NewGeneratedIDRepo(st),
			repos.NewStaffRepo(st),
			repos.NewResourcePersonRepo(st),
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
