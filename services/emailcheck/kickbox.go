// Package emailcheck verifies that an email address can actually receive
// mail before a verification code is sent to it.
package emailcheck

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
)

var (
	ErrNoMXRecords   = errors.New("no MX records found for this email domain")
	ErrUndeliverable = errors.New("this email address appears to be undeliverable")
	ErrInvalidEmail  = errors.New("invalid email address")
)

// Checker is any service that can tell whether an address is deliverable.
type Checker interface {
	Check(ctx context.Context, email string) error
}

// MXChecker rejects addresses whose domain publishes no MX records.
type MXChecker struct {
	resolver *net.Resolver
}

var _ Checker = (*MXChecker)(nil)

func NewMXChecker() *MXChecker {
	return &MXChecker{resolver: net.DefaultResolver}
}

func (c *MXChecker) Check(ctx context.Context, email string) error {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	domain := email[at+1:]
	mxs, err := c.resolver.LookupMX(ctx, domain)
	if err != nil || len(mxs) == 0 {
		return ErrNoMXRecords
	}
	return nil
}

type kickboxResult struct {
	Result     string `json:"result"` // deliverable, undeliverable, risky, unknown
	Reason     string `json:"reason"`
	Disposable bool   `json:"disposable"`
	Success    bool   `json:"success"`
}

// KickboxChecker calls the Kickbox verification API, falling back to a
// plain MX lookup when the API cannot be reached.
type KickboxChecker struct {
	client *resty.Client
	apiKey string
	mx     *MXChecker
	logger core.Logger
}

var _ Checker = (*KickboxChecker)(nil)

func NewKickboxChecker(conf *core.Config, logger core.Logger) *KickboxChecker {
	client := resty.New().
		SetBaseURL("https://api.kickbox.com/v2").
		SetTimeout(5 * time.Second)
	return &KickboxChecker{
		client: client,
		apiKey: conf.KickboxAPIKey,
		mx:     NewMXChecker(),
		logger: logger,
	}
}

func (c *KickboxChecker) Check(ctx context.Context, email string) error {
	if err := c.mx.Check(ctx, email); err != nil {
		return err
	}

	var result kickboxResult
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"email": email, "apikey": c.apiKey}).
		SetResult(&result).
		Get("/verify")
	if err != nil {
		c.logger.Error("kickbox verify call failed", err)
		return nil // MX check already passed
	}
	if res.IsError() {
		c.logger.Error("kickbox verify returned "+res.Status(), nil)
		return nil
	}

	switch result.Result {
	case "undeliverable":
		return ErrUndeliverable
	case "deliverable", "risky", "unknown":
		return nil
	}
	return nil
}
