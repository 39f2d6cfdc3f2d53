package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/mkulima/kilimo/apps/api/echo"
	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/admin"
	"github.com/mkulima/kilimo/core/allocation"
	"github.com/mkulima/kilimo/core/evaluation"
	"github.com/mkulima/kilimo/core/housing"
	"github.com/mkulima/kilimo/core/identity"
	"github.com/mkulima/kilimo/core/messaging"
	"github.com/mkulima/kilimo/core/program"
	"github.com/mkulima/kilimo/core/trainee"
	"github.com/mkulima/kilimo/core/verification"
	cachesvc "github.com/mkulima/kilimo/services/cache"
	emailsvc "github.com/mkulima/kilimo/services/email"
	"github.com/mkulima/kilimo/services/emailcheck"
	logsvc "github.com/mkulima/kilimo/services/logger"
	"github.com/mkulima/kilimo/storage/document"
	"github.com/mkulima/kilimo/storage/repos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	st := document.NewStore(db)

	traineeRepo := repos.NewTraineeRepo(st)
	roomRepo := repos.NewRoomRepo(st)
	tagRepo := repos.NewTagRepo(st)

	traineeSvc := trainee.NewService(traineeRepo)
	adminSvc := admin.NewService(repos.NewAdminRepo(st))
	housingSvc := housing.NewService(roomRepo, tagRepo)
	allocationSvc := allocation.NewService(traineeRepo, roomRepo, tagRepo)
	identitySvc := identity.NewService(
		repos.NewGeneratedIDRepo(st),
		repos.NewStaffRepo(st),
		repos.NewResourcePersonRepo(st),
	)
	programSvc := program.NewService(
		repos.NewSponsorRepo(st),
		repos.NewBatchRepo(st),
		repos.NewExamRepo(st),
		repos.NewAnnouncementRepo(st),
		repos.NewSettingRepo(st),
	)
	evaluationSvc := evaluation.NewService(repos.NewQuestionRepo(st), repos.NewResponseRepo(st))
	messagingSvc := messaging.NewService(repos.NewNotificationRepo(st), repos.NewMessageRepo(st))

	var emailSvc core.EmailService
	if conf.Debug {
		emailSvc = emailsvc.NewConsoleService(conf)
	} else {
		emailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var codeStore verification.CodeStore
	if conf.Debug {
		codeStore = verification.NewInmemCodeStore()
	} else {
		redisStore := cachesvc.NewRedisCodeStore(conf)
		defer redisStore.Close()
		codeStore = redisStore
	}

	var checker emailcheck.Checker
	if conf.KickboxAPIKey != "" {
		checker = emailcheck.NewKickboxChecker(conf, logger)
	} else {
		checker = emailcheck.NewMXChecker()
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	trainee.InitValidators(validate, translator)
	evaluation.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		EmailSvc:      emailSvc,
		EmailChecker:  checker,
		CodeStore:     codeStore,
		TraineeSvc:    traineeSvc,
		AdminSvc:      adminSvc,
		HousingSvc:    housingSvc,
		AllocationSvc: allocationSvc,
		IdentitySvc:   identitySvc,
		ProgramSvc:    programSvc,
		EvaluationSvc: evaluationSvc,
		MessagingSvc:  messagingSvc,
		Validate:      validate,
		Translator:    translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := document.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := document.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = document.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
