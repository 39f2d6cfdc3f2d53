package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestAdminLogin(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	if _, err := app.admins.Create(ctx, "Jane Admin", "jane@test.ke", "S3cr3t!pwd"); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}

	body := marchallObj(t, map[string]string{"email": "jane@test.ke", "password": "S3cr3t!pwd"})
	req, rec := newRequest(http.MethodPost, "/api/admin/login", body)
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}

	// the session token travels in an HTTP-only cookie, never in the body
	var cookie string
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminTokenCookie {
			cookie = c.Name + "=" + c.Value
			if !c.HttpOnly {
				t.Error("admin cookie is not HttpOnly")
			}
			if c.Value == "" {
				t.Error("admin cookie is empty")
			}
		}
	}
	if cookie == "" {
		t.Fatal("no adminToken cookie set")
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("password hash leaked in login response")
	}

	var got struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Name != "Jane Admin" || got.Email != "jane@test.ke" {
		t.Errorf("login response = %s", rec.Body.Bytes())
	}

	// the cookie unlocks /admin/me
	req, rec = newAuthRequest(http.MethodGet, "/api/admin/me", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Email != "jane@test.ke" {
		t.Errorf("me response = %s", rec.Body.Bytes())
	}
}

func TestAdminLoginRejections(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	if _, err := app.admins.Create(ctx, "Jane Admin", "jane@test.ke", "S3cr3t!pwd"); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}

	tests := []httpTest{
		{
			name:     "wrong password",
			body:     marchallObj(t, map[string]string{"email": "jane@test.ke", "password": "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown email",
			body:     marchallObj(t, map[string]string{"email": "who@test.ke", "password": "S3cr3t!pwd"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "missing fields",
			body:     marchallObj(t, map[string]string{"email": "jane@test.ke"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/admin/login", tt.body)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAdminMeRequiresCookie(t *testing.T) {
	app := newTestApp()

	req, rec := newRequest(http.MethodGet, "/api/admin/me")
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, errMissingToken),
	}, rec)
}

func TestAdminLogoutClearsCookie(t *testing.T) {
	app := newTestApp()

	req, rec := newRequest(http.MethodPost, "/api/admin/logout")
	app.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("logout code = %d; want 200", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == adminTokenCookie && c.MaxAge < 0 && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the admin cookie")
	}
}

func TestDeactivatedAdminCannotLogin(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	a, err := app.admins.Create(ctx, "Gone Admin", "gone@test.ke", "S3cr3t!pwd")
	if err != nil {
		t.Fatalf("seeding admin: %v", err)
	}
	a.IsActive = false
	if _, err = app.admins.SetLastLogin(ctx, a); err != nil {
		t.Fatalf("deactivating admin: %v", err)
	}

	body := marchallObj(t, map[string]string{"email": "gone@test.ke", "password": "S3cr3t!pwd"})
	req, rec := newRequest(http.MethodPost, "/api/admin/login", body)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
	}, rec)
}
