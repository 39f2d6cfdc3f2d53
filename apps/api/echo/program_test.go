package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/mkulima/kilimo/core/program"
)

func TestPublicExamAndAnnouncementListings(t *testing.T) {
	app := newTestApp()
	ctx := context.Background()

	if _, err := app.program.CreateExam(ctx, program.NewExam{
		Title: "Soil Science", IsAvailable: true, StartsAt: time.Now().Add(time.Hour), Duration: 90,
	}); err != nil {
		t.Fatalf("seeding exam: %v", err)
	}
	_, _ = app.program.CreateExam(ctx, program.NewExam{Title: "Draft Exam"})
	_, _ = app.program.CreateAnnouncement(ctx, program.NewAnnouncement{Title: "Orientation", Body: "Monday 8am", IsPublished: true})
	_, _ = app.program.CreateAnnouncement(ctx, program.NewAnnouncement{Title: "Draft", Body: "not yet"})

	// both listings are public and only show live entries
	req, rec := newRequest(http.MethodGet, "/api/exams/available")
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("exams code = %d; want 200", rec.Code)
	}
	var exams []program.Exam
	_ = json.Unmarshal(rec.Body.Bytes(), &exams)
	if len(exams) != 1 || exams[0].Title != "Soil Science" {
		t.Errorf("available exams = %+v", exams)
	}

	req, rec = newRequest(http.MethodGet, "/api/announcements")
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("announcements code = %d; want 200", rec.Code)
	}
	var announcements []program.Announcement
	_ = json.Unmarshal(rec.Body.Bytes(), &announcements)
	if len(announcements) != 1 || announcements[0].Title != "Orientation" {
		t.Errorf("published announcements = %+v", announcements)
	}
}

func TestSponsorActivationEndpoint(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	body := marchallObj(t, map[string]string{"name": "Ministry of Agriculture"})
	req, rec := newAuthRequest(http.MethodPost, "/api/sponsors", cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d; want 201: %s", rec.Code, rec.Body.Bytes())
	}
	var first program.Sponsor
	_ = json.Unmarshal(rec.Body.Bytes(), &first)

	body = marchallObj(t, map[string]string{"name": "County Fund"})
	req, rec = newAuthRequest(http.MethodPost, "/api/sponsors", cookie, body)
	app.server.ServeHTTP(rec, req)
	var second program.Sponsor
	_ = json.Unmarshal(rec.Body.Bytes(), &second)

	req, rec = newAuthRequest(http.MethodPost, "/api/sponsors/"+first.ID+"/activate", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}
	req, rec = newAuthRequest(http.MethodPost, "/api/sponsors/"+second.ID+"/activate", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/sponsors", cookie)
	app.server.ServeHTTP(rec, req)
	var sponsors []program.Sponsor
	_ = json.Unmarshal(rec.Body.Bytes(), &sponsors)
	var active int
	for _, s := range sponsors {
		if s.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("%d active sponsors; want 1", active)
	}

	req, rec = newAuthRequest(http.MethodPost, "/api/sponsors/unknown/activate", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown sponsor code = %d; want 404", rec.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	body := marchallObj(t, map[string]string{"value": "true"})
	req, rec := newAuthRequest(http.MethodPatch, "/api/settings/registration_open", cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/settings/registration_open", cookie)
	app.server.ServeHTTP(rec, req)
	var got program.Setting
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Key != "registration_open" || got.Value != "true" {
		t.Errorf("setting = %+v", got)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/api/settings/registration_open", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d; want 204", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/settings/registration_open", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete code = %d; want 404", rec.Code)
	}
}
