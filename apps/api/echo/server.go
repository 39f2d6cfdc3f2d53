package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
	"github.com/mkulima/kilimo/services/emailcheck"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		EmailSvc      core.EmailService
		EmailChecker  emailcheck.Checker
		CodeStore     verification.CodeStore
		TraineeSvc    *trainee.Service
		AdminSvc      *admin.Service
		HousingSvc    *housing.Service
		AllocationSvc *allocation.Service
		IdentitySvc   *identity.Service
		ProgramSvc    *program.Service
		EvaluationSvc *evaluation.Service
		MessagingSvc  *messaging.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() chan error
		ShutdownSignal() chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.CORSOrigin != "" {
		s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{conf.CORSOrigin},
			AllowCredentials: true,
		}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	adminRequired := adminJWTMiddleware(conf)

	registerRegistrationAPI(api, &s.deps)
	registerAdminAPI(api, adminRequired, &s.deps)
	registerTraineeAPI(api, adminRequired, &s.deps)
	registerHousingAPI(api, adminRequired, &s.deps)
	registerAllocationAPI(api, adminRequired, &s.deps)
	registerIdentityAPI(api, adminRequired, &s.deps)
	registerProgramAPI(api, adminRequired, &s.deps)
	registerEvaluationAPI(api, adminRequired, &s.deps)
	registerMessagingAPI(api, adminRequired, &s.deps)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() chan error { return s.errs }

func (s *server) ShutdownSignal() chan os.Signal { return s.shutdown }

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Kilimo API!")
}
