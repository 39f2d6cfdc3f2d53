// Package allocation reconciles room, tag and trainee allocation state.
//
// Every operation is a batch over full collection scans: load everything,
// compute the expected value per record, write back only what differs, and
// report counts. Individual record failures are tallied as inconsistencies
// and never abort the run.
package allocation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core/housing"
	"github.com/mkulima/kilimo/core/trainee"
)

type (
	Service struct {
		trainees trainee.Repository
		rooms    housing.RoomRepository
		tags     housing.TagRepository
	}

	// Progress is invoked once per scanned record during cleanup
	// operations, for UI feedback.
	Progress func(processed, total int, note string)

	// Report summarizes a Synchronize run.
	Report struct {
		Allocated       int      `json:"allocated"`
		NoRooms         int      `json:"noRooms"`
		NoTags          int      `json:"noTags"`
		RoomsUpdated    int      `json:"roomsUpdated"`
		TagsUpdated     int      `json:"tagsUpdated"`
		Inconsistencies int      `json:"inconsistencies"`
		Snapshot        Snapshot `json:"snapshot"`
	}

	// Snapshot is the final per-status census.
	Snapshot struct {
		TraineesPending        int `json:"traineesPending"`
		TraineesAllocated      int `json:"traineesAllocated"`
		TraineesNoRooms        int `json:"traineesNoRooms"`
		TraineesNoTags         int `json:"traineesNoTags"`
		RoomsAvailable         int `json:"roomsAvailable"`
		RoomsPartiallyOccupied int `json:"roomsPartiallyOccupied"`
		RoomsOccupied          int `json:"roomsOccupied"`
		RoomsMaintenance       int `json:"roomsMaintenance"`
		TagsAvailable          int `json:"tagsAvailable"`
		TagsAssigned           int `json:"tagsAssigned"`
	}

	// CleanupReport summarizes a cleanup/migration pass.
	CleanupReport struct {
		Scanned         int `json:"scanned"`
		Fixed           int `json:"fixed"`
		Inconsistencies int `json:"inconsistencies"`
	}
)

func NewService(trainees trainee.Repository, rooms housing.RoomRepository, tags housing.TagRepository) *Service {
	return &Service{trainees: trainees, rooms: rooms, tags: tags}
}

func roomKey(roomNumber, block string) string {
	return roomNumber + "|" + housing.BlockLetter(block)
}

// Synchronize brings room statuses, tag statuses and trainee allocation
// state back into mutual consistency, then allocates pending trainees to
// available tags and rooms.
func (svc *Service) Synchronize(ctx context.Context) (Report, error) {
	var rep Report

	trainees, err := svc.trainees.QueryAllTrainees(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading trainees")
	}
	rooms, err := svc.rooms.QueryAllRooms(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading rooms")
	}
	tags, err := svc.tags.QueryAllTags(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading tags")
	}

	// room occupancy, derived from trainee records (the source of truth)
	occupancy := make(map[string]int)
	for _, t := range trainees {
		if t.HasRoom() {
			occupancy[roomKey(t.RoomNumber, t.RoomBlock)]++
		}
	}

	// correct cached room status/occupancy
	for i := range rooms {
		r := &rooms[i]
		if r.Status == housing.RoomMaintenance {
			continue
		}
		occ := occupancy[roomKey(r.RoomNumber, r.Block)]
		want := housing.StatusForOccupancy(r.Capacity(), occ)
		if r.Status == want && r.CurrentOccupancy == occ {
			continue
		}
		r.Status = want
		r.CurrentOccupancy = occ
		r.UpdatedAt = time.Now().UTC()
		if _, err := svc.rooms.UpdateRoom(ctx, *r); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.RoomsUpdated++
	}

	// self-heal tags referenced by a trainee but still marked available;
	// a tag assigned to two trainees is not detectable here
	tagByNo := make(map[string]*housing.TagNumber, len(tags))
	for i := range tags {
		tagByNo[tags[i].TagNo] = &tags[i]
	}
	for _, t := range trainees {
		if !t.HasTag() {
			continue
		}
		tag, ok := tagByNo[t.TagNumber]
		if !ok || tag.Status != housing.TagAvailable {
			continue
		}
		tag.Status = housing.TagAssigned
		tag.UpdatedAt = time.Now().UTC()
		if _, err := svc.tags.UpdateTag(ctx, *tag); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.TagsUpdated++
	}

	// available tag pool, FIFO by collection order
	available := make([]*housing.TagNumber, 0, len(tags))
	for i := range tags {
		if tags[i].Status == housing.TagAvailable {
			available = append(available, &tags[i])
		}
	}

	// assign tags one-for-one to trainees that need one
	for i := range trainees {
		t := &trainees[i]
		if !t.NeedsTag() {
			continue
		}

		// still pending but already holding a tag: promote without
		// consuming another one
		if t.HasTag() {
			t.AllocationStatus = trainee.StatusAllocated
			t.UpdatedAt = time.Now().UTC()
			if _, err := svc.trainees.UpdateTrainee(ctx, *t); err != nil {
				rep.Inconsistencies++
			}
			continue
		}

		var claimed *housing.TagNumber
		for claimed == nil && len(available) > 0 {
			candidate := available[0]
			available = available[1:]
			candidate.Status = housing.TagAssigned
			candidate.UpdatedAt = time.Now().UTC()
			got, err := svc.tags.ClaimTag(ctx, *candidate)
			if err != nil {
				// lost the claim to a concurrent writer; try the next tag
				rep.Inconsistencies++
				continue
			}
			claimed = &got
		}

		if claimed == nil {
			if t.AllocationStatus != trainee.StatusNoTags {
				t.AllocationStatus = trainee.StatusNoTags
				t.UpdatedAt = time.Now().UTC()
				if _, err := svc.trainees.UpdateTrainee(ctx, *t); err != nil {
					rep.Inconsistencies++
					continue
				}
			}
			rep.NoTags++
			continue
		}

		t.TagNumber = claimed.TagNo
		t.AllocationStatus = trainee.StatusAllocated
		t.UpdatedAt = time.Now().UTC()
		if _, err := svc.trainees.UpdateTrainee(ctx, *t); err != nil {
			rep.Inconsistencies++
			continue
		}
		if t.HasRoom() {
			rep.Allocated++
		}
	}

	// room allocation for trainees that hold a tag but no room yet
	liveOcc := make(map[string]int, len(rooms))
	for i := range rooms {
		liveOcc[roomKey(rooms[i].RoomNumber, rooms[i].Block)] = rooms[i].CurrentOccupancy
	}
	for i := range trainees {
		t := &trainees[i]
		if t.AllocationStatus != trainee.StatusAllocated || t.HasRoom() {
			continue
		}

		room := svc.findRoom(rooms, liveOcc, t.Gender)
		if room == nil {
			t.AllocationStatus = trainee.StatusNoRooms
			t.UpdatedAt = time.Now().UTC()
			if _, err := svc.trainees.UpdateTrainee(ctx, *t); err != nil {
				rep.Inconsistencies++
				continue
			}
			rep.NoRooms++
			continue
		}

		key := roomKey(room.RoomNumber, room.Block)
		liveOcc[key]++
		room.CurrentOccupancy = liveOcc[key]
		room.Status = housing.StatusForOccupancy(room.Capacity(), room.CurrentOccupancy)
		room.UpdatedAt = time.Now().UTC()
		if _, err := svc.rooms.UpdateRoom(ctx, *room); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.RoomsUpdated++

		t.RoomNumber = room.RoomNumber
		t.RoomBlock = room.Block
		t.BedSpace = room.BedSpace
		t.UpdatedAt = time.Now().UTC()
		if _, err := svc.trainees.UpdateTrainee(ctx, *t); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.Allocated++
	}

	rep.Snapshot = snapshot(trainees, rooms, tags)
	return rep, nil
}

// findRoom returns the first room matching the gender-to-block mapping with
// free bed space, in collection order.
func (svc *Service) findRoom(rooms []housing.Room, liveOcc map[string]int, gender string) *housing.Room {
	for i := range rooms {
		r := &rooms[i]
		if r.Status == housing.RoomMaintenance || !r.MatchesGender(gender) {
			continue
		}
		if liveOcc[roomKey(r.RoomNumber, r.Block)] < r.Capacity() {
			return r
		}
	}
	return nil
}

func snapshot(trainees []trainee.Trainee, rooms []housing.Room, tags []housing.TagNumber) Snapshot {
	var s Snapshot
	for _, t := range trainees {
		switch t.AllocationStatus {
		case trainee.StatusPending:
			s.TraineesPending++
		case trainee.StatusAllocated:
			s.TraineesAllocated++
		case trainee.StatusNoRooms:
			s.TraineesNoRooms++
		case trainee.StatusNoTags:
			s.TraineesNoTags++
		}
	}
	for _, r := range rooms {
		switch {
		case r.Status == housing.RoomMaintenance:
			s.RoomsMaintenance++
		case housing.Occupied(r.Status):
			s.RoomsOccupied++
		case r.Status == housing.RoomPartiallyOccupied:
			s.RoomsPartiallyOccupied++
		default:
			s.RoomsAvailable++
		}
	}
	for _, tg := range tags {
		if tg.Status == housing.TagAssigned {
			s.TagsAssigned++
		} else {
			s.TagsAvailable++
		}
	}
	return s
}

// expectedStatus computes the allocation status implied by the resource
// fields alone: both resources -> allocated, neither -> pending, a missing
// room -> no_rooms, a missing tag -> no_tags.
func expectedStatus(t trainee.Trainee) string {
	switch {
	case t.HasTag() && t.HasRoom():
		return trainee.StatusAllocated
	case !t.HasTag() && !t.HasRoom():
		return trainee.StatusPending
	case !t.HasRoom():
		return trainee.StatusNoRooms
	default:
		return trainee.StatusNoTags
	}
}

// CleanupInvalidRoomAssignments resets trainees whose assigned room no
// longer exists back to a pending room.
func (svc *Service) CleanupInvalidRoomAssignments(ctx context.Context, progress Progress) (CleanupReport, error) {
	var rep CleanupReport

	trainees, err := svc.trainees.QueryAllTrainees(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading trainees")
	}
	rooms, err := svc.rooms.QueryAllRooms(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading rooms")
	}

	existing := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		existing[roomKey(r.RoomNumber, r.Block)] = true
	}

	total := len(trainees)
	for i, t := range trainees {
		rep.Scanned++
		if progress != nil {
			progress(i+1, total, t.Email)
		}
		if !t.HasRoom() || existing[roomKey(t.RoomNumber, t.RoomBlock)] {
			continue
		}
		t.RoomNumber = trainee.Pending
		t.RoomBlock = trainee.Pending
		t.BedSpace = trainee.Pending
		t.AllocationStatus = expectedStatus(t)
		t.UpdatedAt = time.Now().UTC()
		if _, err := svc.trainees.UpdateTrainee(ctx, t); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.Fixed++
	}
	return rep, nil
}

// CleanupInvalidTagAssignments resets trainees whose tag record no longer
// exists, and frees tags marked assigned that no trainee references.
func (svc *Service) CleanupInvalidTagAssignments(ctx context.Context, progress Progress) (CleanupReport, error) {
	var rep CleanupReport

	trainees, err := svc.trainees.QueryAllTrainees(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading trainees")
	}
	tags, err := svc.tags.QueryAllTags(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading tags")
	}

	tagByNo := make(map[string]bool, len(tags))
	referenced := make(map[string]bool)
	for _, tg := range tags {
		tagByNo[tg.TagNo] = true
	}
	for _, t := range trainees {
		if t.HasTag() {
			referenced[t.TagNumber] = true
		}
	}

	total := len(trainees) + len(tags)
	processed := 0
	for _, t := range trainees {
		rep.Scanned++
		processed++
		if progress != nil {
			progress(processed, total, t.Email)
		}
		if !t.HasTag() || tagByNo[t.TagNumber] {
			continue
		}
		t.TagNumber = trainee.Pending
		t.AllocationStatus = expectedStatus(t)
		t.UpdatedAt = time.Now().UTC()
		if _, err := svc.trainees.UpdateTrainee(ctx, t); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.Fixed++
	}

	for _, tg := range tags {
		rep.Scanned++
		processed++
		if progress != nil {
			progress(processed, total, tg.TagNo)
		}
		if tg.Status != housing.TagAssigned || referenced[tg.TagNo] {
			continue
		}
		tg.Status = housing.TagAvailable
		tg.UpdatedAt = time.Now().UTC()
		if _, err := svc.tags.UpdateTag(ctx, tg); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.Fixed++
	}
	return rep, nil
}

// FixAllocationStatus rewrites each trainee's allocation status to the one
// implied by their room/tag fields.
func (svc *Service) FixAllocationStatus(ctx context.Context, progress Progress) (CleanupReport, error) {
	var rep CleanupReport

	trainees, err := svc.trainees.QueryAllTrainees(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading trainees")
	}

	total := len(trainees)
	for i, t := range trainees {
		rep.Scanned++
		if progress != nil {
			progress(i+1, total, t.Email)
		}
		want := expectedStatus(t)
		if t.AllocationStatus == want {
			continue
		}
		t.AllocationStatus = want
		t.UpdatedAt = time.Now().UTC()
		if _, err := svc.trainees.UpdateTrainee(ctx, t); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.Fixed++
	}
	return rep, nil
}

// MigrateExistingTrainees backfills allocation fields on trainee documents
// created before allocation existed: empty resource fields become pending
// and a missing status is derived from the resource fields.
func (svc *Service) MigrateExistingTrainees(ctx context.Context, progress Progress) (CleanupReport, error) {
	var rep CleanupReport

	trainees, err := svc.trainees.QueryAllTrainees(ctx)
	if err != nil {
		return rep, errors.Wrap(err, "loading trainees")
	}

	total := len(trainees)
	for i, t := range trainees {
		rep.Scanned++
		if progress != nil {
			progress(i+1, total, t.Email)
		}
		var changed bool
		if t.TagNumber == "" {
			t.TagNumber = trainee.Pending
			changed = true
		}
		if t.RoomNumber == "" {
			t.RoomNumber = trainee.Pending
			changed = true
		}
		if t.RoomBlock == "" {
			t.RoomBlock = trainee.Pending
			changed = true
		}
		if t.BedSpace == "" {
			t.BedSpace = trainee.Pending
			changed = true
		}
		if t.AllocationStatus == "" {
			t.AllocationStatus = expectedStatus(t)
			changed = true
		}
		if !changed {
			continue
		}
		t.UpdatedAt = time.Now().UTC()
		if _, err := svc.trainees.UpdateTrainee(ctx, t); err != nil {
			rep.Inconsistencies++
			continue
		}
		rep.Fixed++
	}
	return rep, nil
}
