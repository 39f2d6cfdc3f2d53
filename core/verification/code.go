// Package verification manages the email verification codes used by the
// registration wizard. Codes are 6-digit, single-use and expire after the
// configured TTL; storage lives behind CodeStore so production can use a
// shared cache instead of process-local state.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrCodeNotFound = errors.New("verification code not found or expired")
	ErrCodeMismatch = errors.New("invalid verification code")

	NowFunc = time.Now // mockable
)

// PendingRegistration parks the credentials captured at the first wizard
// step until the code round-trip completes. The password is hashed before
// it gets here; no record exists yet.
type PendingRegistration struct {
	Code         string `json:"code"`
	PasswordHash []byte `json:"passwordHash"`
}

// CodeStore is any store that can keep pending registrations keyed by email
// with an expiry.
type CodeStore interface {
	Put(ctx context.Context, email string, p PendingRegistration, ttl time.Duration) error
	// Get returns ErrCodeNotFound for absent or expired entries.
	Get(ctx context.Context, email string) (PendingRegistration, error)
	Delete(ctx context.Context, email string) error
}

// GenerateCode returns a cryptographically-strong 6-digit code in
// [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", errors.Wrap(err, "generating verification code")
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Verify checks the submitted code against the stored one and consumes the
// pending registration on success (single-use), returning it to the caller.
func Verify(ctx context.Context, store CodeStore, email, code string) (PendingRegistration, error) {
	p, err := store.Get(ctx, email)
	if err != nil {
		return PendingRegistration{}, err
	}
	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(code)) == 0 {
		return PendingRegistration{}, ErrCodeMismatch
	}
	return p, store.Delete(ctx, email)
}
