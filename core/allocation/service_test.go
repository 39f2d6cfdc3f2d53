package allocation

import (
	"context"
	"testing"

	"github.com/mkulima/kilimo/core/housing"
	"github.com/mkulima/kilimo/core/trainee"
	inmemstore "github.com/mkulima/kilimo/storage/inmem"
	"github.com/mkulima/kilimo/storage/repos"
)

type fixtures struct {
	svc      *Service
	trainees *repos.TraineeRepo
	rooms    *repos.RoomRepo
	tags     *repos.TagRepo
}

func newFixtures() fixtures {
	st := inmemstore.NewStore()
	f := fixtures{
		trainees: repos.NewTraineeRepo(st),
		rooms:    repos.NewRoomRepo(st),
		tags:     repos.NewTagRepo(st),
	}
	f.svc = NewService(f.trainees, f.rooms, f.tags)
	return f
}

func pendingTrainee(email, gender string) trainee.Trainee {
	return trainee.Trainee{
		Email:            email,
		Gender:           gender,
		TagNumber:        trainee.Pending,
		RoomNumber:       trainee.Pending,
		RoomBlock:        trainee.Pending,
		BedSpace:         trainee.Pending,
		AllocationStatus: trainee.StatusPending,
	}
}

func TestSynchronizeAllocatesPendingTrainee(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	tr, err := f.trainees.CreateTrainee(ctx, pendingTrainee("juma@test.ke", trainee.GenderMale))
	if err != nil {
		t.Fatalf("creating trainee: %v", err)
	}
	if _, err = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-001", Status: housing.TagAvailable}); err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err = f.rooms.CreateRoom(ctx, housing.Room{
		RoomNumber: "Room-01", Block: "BlockA", BedSpace: "1", Status: housing.RoomAvailable,
	}); err != nil {
		t.Fatalf("creating room: %v", err)
	}

	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}

	if rep.Allocated != 1 {
		t.Errorf("Allocated = %d; want 1", rep.Allocated)
	}
	if rep.NoRooms != 0 || rep.NoTags != 0 || rep.Inconsistencies != 0 {
		t.Errorf("unexpected failure counters: %+v", rep)
	}

	got, err := f.trainees.GetTraineeByID(ctx, tr.ID)
	if err != nil {
		t.Fatalf("reloading trainee: %v", err)
	}
	if got.AllocationStatus != trainee.StatusAllocated {
		t.Errorf("trainee status = %q; want %q", got.AllocationStatus, trainee.StatusAllocated)
	}
	if got.TagNumber != "T-001" {
		t.Errorf("trainee tag = %q; want T-001", got.TagNumber)
	}
	if got.RoomNumber != "Room-01" || got.RoomBlock != "BlockA" {
		t.Errorf("trainee room = %q/%q; want Room-01/BlockA", got.RoomNumber, got.RoomBlock)
	}

	tag, err := f.tags.GetTagByNo(ctx, "T-001")
	if err != nil {
		t.Fatalf("reloading tag: %v", err)
	}
	if tag.Status != housing.TagAssigned {
		t.Errorf("tag status = %q; want %q", tag.Status, housing.TagAssigned)
	}

	room, err := f.rooms.GetRoomByNumber(ctx, "Room-01")
	if err != nil {
		t.Fatalf("reloading room: %v", err)
	}
	if room.Status != housing.RoomOccupied {
		t.Errorf("room status = %q; want %q", room.Status, housing.RoomOccupied)
	}
	if room.CurrentOccupancy != 1 {
		t.Errorf("room occupancy = %d; want 1", room.CurrentOccupancy)
	}

	if rep.Snapshot.TraineesAllocated != 1 {
		t.Errorf("snapshot allocated trainees = %d; want 1", rep.Snapshot.TraineesAllocated)
	}
	if rep.Snapshot.TagsAssigned != 1 || rep.Snapshot.TagsAvailable != 0 {
		t.Errorf("snapshot tags = %+v", rep.Snapshot)
	}
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	_, _ = f.trainees.CreateTrainee(ctx, pendingTrainee("amina@test.ke", trainee.GenderFemale))
	_, _ = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-010", Status: housing.TagAvailable})
	_, _ = f.rooms.CreateRoom(ctx, housing.Room{
		RoomNumber: "Room-20", Block: "BlockC", BedSpace: "double", Status: housing.RoomAvailable,
	})

	if _, err := f.svc.Synchronize(ctx); err != nil {
		t.Fatalf("first Synchronize() failed: %v", err)
	}
	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("second Synchronize() failed: %v", err)
	}

	if rep.Allocated != 0 || rep.NoRooms != 0 || rep.NoTags != 0 ||
		rep.RoomsUpdated != 0 || rep.TagsUpdated != 0 || rep.Inconsistencies != 0 {
		t.Errorf("second run changed state: %+v", rep)
	}
	if rep.Snapshot.TraineesAllocated != 1 {
		t.Errorf("snapshot allocated trainees = %d; want 1", rep.Snapshot.TraineesAllocated)
	}
}

func TestSynchronizeTagExhaustion(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	_, _ = f.trainees.CreateTrainee(ctx, pendingTrainee("first@test.ke", trainee.GenderMale))
	second, _ := f.trainees.CreateTrainee(ctx, pendingTrainee("second@test.ke", trainee.GenderMale))
	_, _ = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-001", Status: housing.TagAvailable})
	_, _ = f.rooms.CreateRoom(ctx, housing.Room{
		RoomNumber: "Room-01", Block: "BlockA", BedSpace: "2", Status: housing.RoomAvailable,
	})

	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if rep.Allocated != 1 {
		t.Errorf("Allocated = %d; want 1", rep.Allocated)
	}
	if rep.NoTags != 1 {
		t.Errorf("NoTags = %d; want 1", rep.NoTags)
	}

	got, _ := f.trainees.GetTraineeByID(ctx, second.ID)
	if got.AllocationStatus != trainee.StatusNoTags {
		t.Errorf("overflow trainee status = %q; want %q", got.AllocationStatus, trainee.StatusNoTags)
	}
	if got.TagNumber != trainee.Pending {
		t.Errorf("overflow trainee tag = %q; want pending", got.TagNumber)
	}
}

func TestSynchronizeNoMatchingRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	// female trainees allocate to blocks C/D only
	tr, _ := f.trainees.CreateTrainee(ctx, pendingTrainee("zawadi@test.ke", trainee.GenderFemale))
	_, _ = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-001", Status: housing.TagAvailable})
	_, _ = f.rooms.CreateRoom(ctx, housing.Room{
		RoomNumber: "Room-01", Block: "BlockA", BedSpace: "2", Status: housing.RoomAvailable,
	})

	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if rep.NoRooms != 1 {
		t.Errorf("NoRooms = %d; want 1", rep.NoRooms)
	}
	if rep.Allocated != 0 {
		t.Errorf("Allocated = %d; want 0", rep.Allocated)
	}

	got, _ := f.trainees.GetTraineeByID(ctx, tr.ID)
	if got.AllocationStatus != trainee.StatusNoRooms {
		t.Errorf("trainee status = %q; want %q", got.AllocationStatus, trainee.StatusNoRooms)
	}
	// the tag stays with the trainee even without a room
	if got.TagNumber != "T-001" {
		t.Errorf("trainee tag = %q; want T-001", got.TagNumber)
	}
}

func TestSynchronizeSelfHealsTagStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	tr := pendingTrainee("heal@test.ke", trainee.GenderMale)
	tr.TagNumber = "T-009"
	tr.RoomNumber = "Room-05"
	tr.RoomBlock = "BlockA"
	tr.AllocationStatus = trainee.StatusAllocated
	_, _ = f.trainees.CreateTrainee(ctx, tr)

	// referenced by a trainee but never flipped to assigned
	_, _ = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-009", Status: housing.TagAvailable})

	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if rep.TagsUpdated != 1 {
		t.Errorf("TagsUpdated = %d; want 1", rep.TagsUpdated)
	}

	tag, _ := f.tags.GetTagByNo(ctx, "T-009")
	if tag.Status != housing.TagAssigned {
		t.Errorf("tag status = %q; want %q", tag.Status, housing.TagAssigned)
	}
}

func TestSynchronizeCorrectsRoomStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	// room cached as occupied while nobody lives in it
	_, _ = f.rooms.CreateRoom(ctx, housing.Room{
		RoomNumber: "Room-07", Block: "BlockB", BedSpace: "1",
		Status: housing.RoomOccupied, CurrentOccupancy: 1,
	})

	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if rep.RoomsUpdated != 1 {
		t.Errorf("RoomsUpdated = %d; want 1", rep.RoomsUpdated)
	}

	room, _ := f.rooms.GetRoomByNumber(ctx, "Room-07")
	if room.Status != housing.RoomAvailable {
		t.Errorf("room status = %q; want %q", room.Status, housing.RoomAvailable)
	}
	if room.CurrentOccupancy != 0 {
		t.Errorf("room occupancy = %d; want 0", room.CurrentOccupancy)
	}
}

func TestSynchronizeSkipsMaintenanceRooms(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	_, _ = f.trainees.CreateTrainee(ctx, pendingTrainee("fundi@test.ke", trainee.GenderMale))
	_, _ = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-001", Status: housing.TagAvailable})
	_, _ = f.rooms.CreateRoom(ctx, housing.Room{
		RoomNumber: "Room-01", Block: "BlockA", BedSpace: "2", Status: housing.RoomMaintenance,
	})

	rep, err := f.svc.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if rep.NoRooms != 1 {
		t.Errorf("NoRooms = %d; want 1", rep.NoRooms)
	}

	room, _ := f.rooms.GetRoomByNumber(ctx, "Room-01")
	if room.Status != housing.RoomMaintenance {
		t.Errorf("maintenance room status changed to %q", room.Status)
	}
}

func TestCleanupInvalidRoomAssignments(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	tr := pendingTrainee("ghost@test.ke", trainee.GenderMale)
	tr.TagNumber = "T-001"
	tr.RoomNumber = "Room-99" // never created
	tr.RoomBlock = "BlockA"
	tr.BedSpace = "1"
	tr.AllocationStatus = trainee.StatusAllocated
	created, _ := f.trainees.CreateTrainee(ctx, tr)

	ok := pendingTrainee("fine@test.ke", trainee.GenderMale)
	ok.TagNumber = "T-002"
	ok.RoomNumber = "Room-01"
	ok.RoomBlock = "BlockA"
	ok.AllocationStatus = trainee.StatusAllocated
	kept, _ := f.trainees.CreateTrainee(ctx, ok)

	_, _ = f.rooms.CreateRoom(ctx, housing.Room{RoomNumber: "Room-01", Block: "BlockA", BedSpace: "2"})

	var calls int
	rep, err := f.svc.CleanupInvalidRoomAssignments(ctx, func(processed, total int, note string) { calls++ })
	if err != nil {
		t.Fatalf("CleanupInvalidRoomAssignments() failed: %v", err)
	}
	if rep.Scanned != 2 || rep.Fixed != 1 || rep.Inconsistencies != 0 {
		t.Errorf("report = %+v; want 2 scanned, 1 fixed", rep)
	}
	if calls != 2 {
		t.Errorf("progress called %d times; want 2", calls)
	}

	got, _ := f.trainees.GetTraineeByID(ctx, created.ID)
	if got.RoomNumber != trainee.Pending || got.RoomBlock != trainee.Pending || got.BedSpace != trainee.Pending {
		t.Errorf("room fields not reset: %+v", got)
	}
	if got.AllocationStatus != trainee.StatusNoRooms {
		t.Errorf("status = %q; want %q", got.AllocationStatus, trainee.StatusNoRooms)
	}

	untouched, _ := f.trainees.GetTraineeByID(ctx, kept.ID)
	if untouched.RoomNumber != "Room-01" {
		t.Errorf("valid assignment was reset: %+v", untouched)
	}
}

func TestCleanupInvalidTagAssignments(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	tr := pendingTrainee("lost@test.ke", trainee.GenderMale)
	tr.TagNumber = "T-404" // no such tag record
	tr.RoomNumber = "Room-01"
	tr.RoomBlock = "BlockA"
	tr.AllocationStatus = trainee.StatusAllocated
	created, _ := f.trainees.CreateTrainee(ctx, tr)

	// assigned but referenced by nobody
	_, _ = f.tags.CreateTag(ctx, housing.TagNumber{TagNo: "T-002", Status: housing.TagAssigned})

	rep, err := f.svc.CleanupInvalidTagAssignments(ctx, nil)
	if err != nil {
		t.Fatalf("CleanupInvalidTagAssignments() failed: %v", err)
	}
	if rep.Fixed != 2 {
		t.Errorf("Fixed = %d; want 2 (trainee reset + tag freed)", rep.Fixed)
	}

	got, _ := f.trainees.GetTraineeByID(ctx, created.ID)
	if got.TagNumber != trainee.Pending {
		t.Errorf("trainee tag = %q; want pending", got.TagNumber)
	}
	if got.AllocationStatus != trainee.StatusNoTags {
		t.Errorf("status = %q; want %q", got.AllocationStatus, trainee.StatusNoTags)
	}

	tag, _ := f.tags.GetTagByNo(ctx, "T-002")
	if tag.Status != housing.TagAvailable {
		t.Errorf("orphaned tag status = %q; want %q", tag.Status, housing.TagAvailable)
	}
}

func TestFixAllocationStatus(t *testing.T) {
	tests := []struct {
		name       string
		tag, room  string
		status     string
		wantStatus string
		wantFixed  int
	}{
		{"both resources", "T-001", "Room-01", trainee.StatusPending, trainee.StatusAllocated, 1},
		{"neither resource", trainee.Pending, trainee.Pending, trainee.StatusAllocated, trainee.StatusPending, 1},
		{"tag only", "T-001", trainee.Pending, trainee.StatusPending, trainee.StatusNoRooms, 1},
		{"room only", trainee.Pending, "Room-01", trainee.StatusPending, trainee.StatusNoTags, 1},
		{"already correct", "T-001", "Room-01", trainee.StatusAllocated, trainee.StatusAllocated, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixtures()

			tr := pendingTrainee("fix@test.ke", trainee.GenderMale)
			tr.TagNumber = tt.tag
			tr.RoomNumber = tt.room
			tr.AllocationStatus = tt.status
			created, _ := f.trainees.CreateTrainee(ctx, tr)

			rep, err := f.svc.FixAllocationStatus(ctx, nil)
			if err != nil {
				t.Fatalf("FixAllocationStatus() failed: %v", err)
			}
			if rep.Fixed != tt.wantFixed {
				t.Errorf("Fixed = %d; want %d", rep.Fixed, tt.wantFixed)
			}

			got, _ := f.trainees.GetTraineeByID(ctx, created.ID)
			if got.AllocationStatus != tt.wantStatus {
				t.Errorf("status = %q; want %q", got.AllocationStatus, tt.wantStatus)
			}
		})
	}
}

func TestMigrateExistingTrainees(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	// pre-allocation document shape: no allocation fields at all
	legacy, _ := f.trainees.CreateTrainee(ctx, trainee.Trainee{
		Email:  "legacy@test.ke",
		Gender: trainee.GenderMale,
	})
	modern, _ := f.trainees.CreateTrainee(ctx, pendingTrainee("modern@test.ke", trainee.GenderFemale))

	rep, err := f.svc.MigrateExistingTrainees(ctx, nil)
	if err != nil {
		t.Fatalf("MigrateExistingTrainees() failed: %v", err)
	}
	if rep.Scanned != 2 || rep.Fixed != 1 {
		t.Errorf("report = %+v; want 2 scanned, 1 fixed", rep)
	}

	got, _ := f.trainees.GetTraineeByID(ctx, legacy.ID)
	if got.TagNumber != trainee.Pending || got.RoomNumber != trainee.Pending ||
		got.RoomBlock != trainee.Pending || got.BedSpace != trainee.Pending {
		t.Errorf("allocation fields not backfilled: %+v", got)
	}
	if got.AllocationStatus != trainee.StatusPending {
		t.Errorf("status = %q; want %q", got.AllocationStatus, trainee.StatusPending)
	}

	second, _ := f.trainees.GetTraineeByID(ctx, modern.ID)
	if second.UpdatedAt != modern.UpdatedAt {
		t.Errorf("already-migrated trainee was rewritten")
	}
}
