package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/trainee"
	"github.com/mkulima/kilimo/core/verification"
	"github.com/mkulima/kilimo/services/emailcheck"
)

type registrationApi struct {
	conf       *core.Config
	logger     core.Logger
	emailSvc   core.EmailService
	checker    emailcheck.Checker
	codes      verification.CodeStore
	svc        *trainee.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerRegistrationAPI(g *echo.Group, deps *ServerDeps) {
	api := registrationApi{
		conf:       deps.Conf,
		logger:     deps.Logger,
		emailSvc:   deps.EmailSvc,
		checker:    deps.EmailChecker,
		codes:      deps.CodeStore,
		svc:        deps.TraineeSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	rg := g.Group("/register")
	rg.POST("/step1", api.step1)
	rg.POST("/verify", api.verify)
	rg.POST("/profile", api.completeProfile)

	g.POST("/email/validate", api.validateEmail)
}

type (
	verifyRequest struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6"`
	}

	emailValidateRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

// step1 checks the address, then sends a verification code to it. No record
// is created until the code round-trip completes.
func (api *registrationApi) step1(ctx echo.Context) error {
	var data trainee.NewTrainee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrainee")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	email := core.CleanString(data.Email, true /* lower */)

	if err := api.svc.CheckEmailAvailable(rctx, email); err != nil {
		return err
	}
	if err := api.checker.Check(rctx, email); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: err.Error()})
	}

	code, err := verification.GenerateCode()
	if err != nil {
		return errors.Wrap(err, "generating verification code")
	}
	// park the credentials with the code; the record is created at verify
	hash, err := trainee.HashPassword(data.Password)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	pending := verification.PendingRegistration{Code: code, PasswordHash: hash}
	if err = api.codes.Put(rctx, email, pending, api.conf.VerificationCodeTTL); err != nil {
		return errors.Wrap(err, "storing pending registration")
	}

	api.emailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      "Verify your email address",
		TemplateName: "verification-code",
		TemplateData: struct {
			Code       string
			TTLMinutes int
		}{code, int(api.conf.VerificationCodeTTL.Minutes())},
	})

	res := echo.Map{
		"message": fmt.Sprintf("a verification code was sent to %s", email),
		"email":   email,
	}
	if api.conf.Debug {
		res["devCode"] = code
	}
	return ctx.JSON(http.StatusOK, res)
}

// verify consumes the code and creates the trainee record.
func (api *registrationApi) verify(ctx echo.Context) error {
	var data verifyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to verifyRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	email := core.CleanString(data.Email, true /* lower */)

	pending, err := verification.Verify(rctx, api.codes, email, data.Code)
	if err != nil {
		switch errors.Cause(err) {
		case verification.ErrCodeNotFound:
			return core.NewValidationError(nil, core.FieldError{Field: "code", Error: "verification code expired or not found"})
		case verification.ErrCodeMismatch:
			return core.NewValidationError(nil, core.FieldError{Field: "code", Error: "invalid verification code"})
		}
		return errors.Wrap(err, "verifying code")
	}

	t, err := api.svc.RegisterVerified(rctx, email, pending.PasswordHash)
	if err != nil {
		return errors.Wrap(err, "registering trainee")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": "email verified, registration started",
		"id":      t.ID,
		"email":   t.Email,
	})
}

func (api *registrationApi) completeProfile(ctx echo.Context) error {
	var data trainee.Profile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Profile")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	t, err := api.svc.CompleteProfile(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == trainee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "completing profile")
	}
	return ctx.JSON(http.StatusOK, t)
}

// validateEmail answers the wizard's live deliverability probe.
func (api *registrationApi) validateEmail(ctx echo.Context) error {
	var data emailValidateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to emailValidateRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	email := core.CleanString(data.Email, true /* lower */)

	if err := api.svc.CheckEmailAvailable(rctx, email); err != nil {
		return err
	}
	if err := api.checker.Check(rctx, email); err != nil {
		return core.NewValidationError(err)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"deliverable": true})
}
