package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/admin"
)

const (
	adminTokenCookie = "adminToken"
	claimsContextKey = "adminClaims"
)

// Claims represents the authorization claims transmitted via the admin JWT.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// adminJWTMiddleware reads the admin JWT from the session cookie.
func adminJWTMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    claimsContextKey,
		TokenLookup:   "cookie:" + adminTokenCookie,
		Claims:        new(Claims),
	})
}

func GetAdminClaims(conf *core.Config, a admin.Admin) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   a.ID,
			Audience:  "AdminPortal",
			ExpiresAt: now.Add(conf.Server.AdminTokenExpiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  a.Name,
		Email: a.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the admin Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func authenticate(ctx context.Context, email, pwd string, svc *admin.Service) (admin.Admin, error) {
	a, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return admin.Admin{}, errAuthenticationFailed
		}
		return admin.Admin{}, errors.Wrap(err, "finding admin by email")
	}
	if err = a.CheckPassword(pwd); err != nil {
		return admin.Admin{}, errAuthenticationFailed
	}
	if !a.IsActive {
		return admin.Admin{}, errAccountDeactivated
	}
	a, err = svc.SetLastLogin(ctx, a)
	if err != nil {
		return admin.Admin{}, errors.Wrap(err, "setting lastLogin")
	}
	return a, nil
}

func setAdminCookie(ctx echo.Context, conf *core.Config, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     adminTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(conf.Server.AdminTokenExpiration),
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAdminCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     adminTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(claimsContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
