package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mkulima/kilimo/core/allocation"
	"github.com/mkulima/kilimo/core/housing"
	"github.com/mkulima/kilimo/core/trainee"
)

func TestRoomCRUD(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	// creation requires the session
	body := marchallObj(t, map[string]string{"roomNumber": "Room-01", "block": "BlockA", "bedSpace": "2"})
	req, rec := newRequest(http.MethodPost, "/api/rooms", body)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, errMissingToken),
	}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/api/rooms", cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d; want 201: %s", rec.Code, rec.Body.Bytes())
	}
	var room housing.Room
	if err := json.Unmarshal(rec.Body.Bytes(), &room); err != nil {
		t.Fatalf("decoding room: %v", err)
	}
	if room.ID == "" || room.Status != housing.RoomAvailable {
		t.Errorf("created room = %+v", room)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/rooms", cookie)
	app.server.ServeHTTP(rec, req)
	var rooms []housing.Room
	_ = json.Unmarshal(rec.Body.Bytes(), &rooms)
	if len(rooms) != 1 {
		t.Errorf("listed %d rooms; want 1", len(rooms))
	}

	body = marchallObj(t, map[string]string{"status": housing.RoomMaintenance})
	req, rec = newAuthRequest(http.MethodPatch, "/api/rooms/"+room.ID, cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}
	var updated housing.Room
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Status != housing.RoomMaintenance {
		t.Errorf("status = %q; want maintenance", updated.Status)
	}
	// patch keeps the other fields
	if updated.RoomNumber != "Room-01" || updated.Block != "BlockA" {
		t.Errorf("patch dropped fields: %+v", updated)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/api/rooms?ids="+room.ID, cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d; want 204", rec.Code)
	}
}

func TestRoomValidation(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	body := marchallObj(t, map[string]string{"roomNumber": "Room-01"})
	req, rec := newAuthRequest(http.MethodPost, "/api/rooms", cookie, body)
	app.server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{
			"block":    "this field is required",
			"bedSpace": "this field is required",
		}),
	}, rec)
}

func TestTagCreateAndList(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)

	body := marchallObj(t, map[string]string{"tagNo": "T-001"})
	req, rec := newAuthRequest(http.MethodPost, "/api/tags", cookie, body)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d; want 201: %s", rec.Code, rec.Body.Bytes())
	}
	var tag housing.TagNumber
	_ = json.Unmarshal(rec.Body.Bytes(), &tag)
	if tag.Status != housing.TagAvailable {
		t.Errorf("tag status = %q; want available", tag.Status)
	}

	req, rec = newAuthRequest(http.MethodGet, "/api/tags", cookie)
	app.server.ServeHTTP(rec, req)
	var tags []housing.TagNumber
	_ = json.Unmarshal(rec.Body.Bytes(), &tags)
	if len(tags) != 1 || tags[0].TagNo != "T-001" {
		t.Errorf("listed tags = %+v", tags)
	}
}

func TestSynchronizeEndpoint(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)
	ctx := context.Background()

	_ = seedTrainee(t, app, "juma@test.ke", trainee.GenderMale)
	if _, err := app.housing.CreateTag(ctx, housing.NewTagNumber{TagNo: "T-001"}); err != nil {
		t.Fatalf("seeding tag: %v", err)
	}
	if _, err := app.housing.CreateRoom(ctx, housing.NewRoom{RoomNumber: "Room-01", Block: "BlockA", BedSpace: "1"}); err != nil {
		t.Fatalf("seeding room: %v", err)
	}

	req, rec := newRequest(http.MethodPost, "/api/allocations/synchronize")
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated synchronize code = %d; want 401", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodPost, "/api/allocations/synchronize", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("synchronize code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}

	var report allocation.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Allocated != 1 {
		t.Errorf("allocated = %d; want 1", report.Allocated)
	}
	if report.Snapshot.TraineesAllocated != 1 {
		t.Errorf("snapshot = %+v", report.Snapshot)
	}

	tr, _ := app.trainees.GetByEmail(ctx, "juma@test.ke")
	if tr.TagNumber != "T-001" || tr.RoomNumber != "Room-01" {
		t.Errorf("trainee not allocated: %+v", tr)
	}
}

func TestFixStatusEndpoint(t *testing.T) {
	app := newTestApp()
	cookie := app.adminCookie(t)
	ctx := context.Background()

	tr := seedTrainee(t, app, "fix@test.ke", trainee.GenderMale)
	if _, err := app.trainees.Update(ctx, tr.ID, trainee.UpdateTrainee{
		TagNumber: "T-001", RoomNumber: "Room-01", RoomBlock: "BlockA",
	}); err != nil {
		t.Fatalf("seeding trainee: %v", err)
	}

	req, rec := newAuthRequest(http.MethodPost, "/api/allocations/fix-status", cookie)
	app.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("fix-status code = %d; want 200: %s", rec.Code, rec.Body.Bytes())
	}

	var report allocation.CleanupReport
	_ = json.Unmarshal(rec.Body.Bytes(), &report)
	if report.Scanned != 1 || report.Fixed != 1 {
		t.Errorf("report = %+v; want 1 scanned, 1 fixed", report)
	}

	got, _ := app.trainees.GetByID(ctx, tr.ID)
	if got.AllocationStatus != trainee.StatusAllocated {
		t.Errorf("status = %q; want allocated", got.AllocationStatus)
	}
}
