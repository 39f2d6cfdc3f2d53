package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

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
	emailsvc "github.com/mkulima/kilimo/services/email"
	"github.com/mkulima/kilimo/services/emailcheck"
	logsvc "github.com/mkulima/kilimo/services/logger"
	inmemstore "github.com/mkulima/kilimo/storage/inmem"
	"github.com/mkulima/kilimo/storage/repos"
)

var (
	parseTemplatesOnce sync.Once

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   string
	wantCode int
	wantData []byte
	extra    interface{}
}

// stubChecker fails every deliverability probe with err; nil passes.
type stubChecker struct {
	err error
}

var _ emailcheck.Checker = (*stubChecker)(nil)

func (c *stubChecker) Check(context.Context, string) error { return c.err }

// recordingCodeStore remembers the last code handed out so tests can
// complete the wizard without reading the outbox.
type recordingCodeStore struct {
	*verification.InmemCodeStore
	lastCode string
}

func (s *recordingCodeStore) Put(ctx context.Context, email string, p verification.PendingRegistration, ttl time.Duration) error {
	s.lastCode = p.Code
	return s.InmemCodeStore.Put(ctx, email, p, ttl)
}

type testApp struct {
	server   Server
	conf     *core.Config
	trainees *trainee.Service
	admins   *admin.Service
	housing  *housing.Service
	identity *identity.Service
	program  *program.Service
	codes    *recordingCodeStore
	checker  *stubChecker
}

func newTestConfig() *core.Config {
	conf := &core.Config{
		TestMode:            true,
		Env:                 "TEST",
		AppName:             "Kilimo",
		SecretKey:           "secret",
		FrontendBaseURL:     "http://localhost:3000",
		WorkDir:             "../../..",
		DefaultFromEmail:    mail.Address{Name: "Kilimo", Address: "noreply@localhost"},
		VerificationCodeTTL: 10 * time.Minute,
	}
	conf.Server.AdminTokenExpiration = 24 * time.Hour
	conf.Server.ShutdownTimeout = 5 * time.Second
	return conf
}

func newTestApp() *testApp {
	conf := newTestConfig()
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	parseTemplatesOnce.Do(func() { core.ParseEmailTemplates(conf, logger) })

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	trainee.InitValidators(validate, translator)
	evaluation.InitValidators(validate, translator)

	st := inmemstore.NewStore()
	traineeRepo := repos.NewTraineeRepo(st)
	roomRepo := repos.NewRoomRepo(st)
	tagRepo := repos.NewTagRepo(st)

	app := &testApp{
		conf:     conf,
		trainees: trainee.NewService(traineeRepo),
		admins:   admin.NewService(repos.NewAdminRepo(st)),
		housing:  housing.NewService(roomRepo, tagRepo),
		identity: identity.NewService(repos.NewGeneratedIDRepo(st), repos.NewStaffRepo(st), repos.NewResourcePersonRepo(st)),
		program: program.NewService(
			repos.NewSponsorRepo(st),
			repos.NewBatchRepo(st),
			repos.NewExamRepo(st),
			repos.NewAnnouncementRepo(st),
			repos.NewSettingRepo(st),
		),
		codes:   &recordingCodeStore{InmemCodeStore: verification.NewInmemCodeStore()},
		checker: new(stubChecker),
	}

	app.server = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		EmailSvc:      emailsvc.NewConsoleServiceMock(conf),
		EmailChecker:  app.checker,
		CodeStore:     app.codes,
		TraineeSvc:    app.trainees,
		AdminSvc:      app.admins,
		HousingSvc:    app.housing,
		AllocationSvc: allocation.NewService(traineeRepo, roomRepo, tagRepo),
		IdentitySvc:   app.identity,
		ProgramSvc:    app.program,
		EvaluationSvc: evaluation.NewService(repos.NewQuestionRepo(st), repos.NewResponseRepo(st)),
		MessagingSvc:  messaging.NewService(repos.NewNotificationRepo(st), repos.NewMessageRepo(st)),
		Validate:      validate,
		Translator:    translator,
	})
	return app
}

// adminCookie creates an admin account and returns a session cookie for it.
func (app *testApp) adminCookie(t *testing.T) string {
	a, err := app.admins.Create(context.Background(), "Test Admin", "admin@test.ke", "S3cr3t!pwd")
	if err != nil {
		t.Fatalf("adminCookie() failed: %v", err)
	}
	token, err := GenerateToken(app.conf, GetAdminClaims(app.conf, a))
	if err != nil {
		t.Fatalf("adminCookie() failed: %v", err)
	}
	return adminTokenCookie + "=" + token
}

func newAuthRequest(method, path, cookie string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}
