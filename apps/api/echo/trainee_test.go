package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mkulima/kilimo/core/trainee"
)

func seedTrainee(t *testing.T, app *testApp, email, gender string) trainee.Trainee {
	tr, err := app.trainees.Register(context.Background(), trainee.NewTrainee{
		Email: email, Password: "S3cr3t!pwd", PasswordConfirm: "S3cr3t!pwd",
	})
	if err != nil {
		t.Fatalf("seedTrainee(%s) failed: %v", email, err)
	}
	tr.Gender = gender
	tr, err = app.trainees.Update(context.Background(), tr.ID, trainee.UpdateTrainee{Gender: gender})
	if err != nil {
		t.Fatalf("seedTrainee(%s) failed: %v", email, err)
	}
	return tr
}

func TestTraineeEndpointsRequireAdmin(t *testing.T) {
	app := newTestApp()

	tests := []httpTest{
		{name: "list", method: http.MethodGet, path: "/api/trainees"},
		{name: "retrieve", method: http.MethodGet, path: "/api/trainees/some-id"},
		{name: "update", method: http.MethodPatch, path: "/api/trainees/some-id"},
		{name: "delete", method: http.MethodDelete, path: "/api/trainees/some-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusUnauthorized
			tt.wantData = marchallObj(t, errMissingToken)
			req, rec := newRequest(tt.method, tt.path)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestTraineeQueryAndFilter(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	male := seedTrainee(t, app, "otieno@test.ke", trainee.GenderMale)
	_ = seedTrainee(t, app, "achieng@test.ke", trainee.GenderFemale)

	req, rec := newAuthRequest(http.MethodGet, "/api/trainees", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}
	var listed []trainee.Trainee
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("listed %d trainees; want 2", len(listed))
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/trainees?gender=male", cookie)
	app.server.ServeHTTP(rec, req)
	_ = json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].ID != male.ID {
		t.Errorf("gender filter returned %+v; want only %s", listed, male.Email)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/trainees?search=achieng", cookie)
	app.server.ServeHTTP(rec, req)
	_ = json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].Email != "achieng@test.ke" {
		t.Errorf("search filter returned %+v", listed)
	}
}

func TestTraineeRetrieveUpdateDelete(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	tr := seedTrainee(t, app, "juma@test.ke", trainee.GenderMale)

	req, rec := newAuthRequest(http.MethodGet, "/api/trainees/"+tr.ID, cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("retrieve code = %d; want 200", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/trainees/unknown", cookie)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)

	body := marchallObj(t, map[string]string{"firstName": "Juma", "surname": "Otieno", "batch": "2026A"})
	req, rec = newAuthRequest(http.MethodPatch, "/api/trainees/"+tr.ID, cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}
	var updated trainee.Trainee
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.FirstName != "Juma" || updated.Batch != "2026A" {
		t.Errorf("update response = %+v", updated)
	}
	// untouched fields survive a partial update
	if updated.Gender != trainee.GenderMale {
		t.Errorf("gender reset by partial update: %+v", updated)
	}

	body = marchallObj(t, map[string]string{"gender": "neither"})
	req, rec = newAuthRequest(http.MethodPatch, "/api/trainees/"+tr.ID, cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid gender code = %d; want 400", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/api/trainees/"+tr.ID, cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d; want 204", rec.Code)
	}
	if _, err := app.trainees.GetByID(context.Background(), tr.ID); err == nil {
		t.Error("trainee still present after delete")
	}
}

func TestTraineeBatchDelete(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	first := seedTrainee(t, app, "one@test.ke", trainee.GenderMale)
	second := seedTrainee(t, app, "two@test.ke", trainee.GenderMale)
	third := seedTrainee(t, app, "three@test.ke", trainee.GenderFemale)

	req, rec := newAuthRequest(http.MethodDelete, "/api/trainees?ids="+first.ID+","+second.ID, cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("batch delete code = %d; want 204", rec.Code)
	}

	remaining, err := app.trainees.QueryAll(context.Background())
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != third.ID {
		t.Errorf("remaining = %+v; want only %s", remaining, third.Email)
	}
}
