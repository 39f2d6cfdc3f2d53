package identity_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/mkulima/kilimo/core"
	"github.com/mkulima/kilimo/core/identity"
	inmemstore "github.com/mkulima/kilimo/storage/inmem"
	"github.com/mkulima/kilimo/storage/repos"
)

type fixtures struct {
	svc   *identity.Service
	ids   *repos.GeneratedIDRepo
	staff *repos.StaffRepo
	rps   *repos.ResourcePersonRepo
}

func newFixtures() fixtures {
	st := inmemstore.NewStore()
	f := fixtures{
		ids:   repos.NewGeneratedIDRepo(st),
		staff: repos.NewStaffRepo(st),
		rps:   repos.NewResourcePersonRepo(st),
	}
	f.svc = identity.NewService(f.ids, f.staff, f.rps)
	return f
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		idType string
		n      int
		want   string
	}{
		{identity.TypeStaff, 1, "ST-0C0S0S1"},
		{identity.TypeStaff, 42, "ST-0C0S0S42"},
		{identity.TypeResourcePerson, 7, "RP-0C0S0S7"},
	}
	for _, tt := range tests {
		if got := identity.FormatValue(tt.idType, tt.n); got != tt.want {
			t.Errorf("FormatValue(%q, %d) = %q; want %q", tt.idType, tt.n, got, tt.want)
		}
	}
}

func TestSequenceNumber(t *testing.T) {
	tests := []struct {
		value  string
		want   int
		wantOK bool
	}{
		{"ST-0C0S0S1", 1, true},
		{"ST-0C0S0S123", 123, true},
		{"RP-0C0S0S9", 9, true},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := identity.SequenceNumber(tt.value)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SequenceNumber(%q) = (%d, %v); want (%d, %v)", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGenerateSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	first, err := f.svc.GenerateStaffID(ctx)
	if err != nil {
		t.Fatalf("GenerateStaffID() failed: %v", err)
	}
	if first.Value != "ST-0C0S0S1" {
		t.Errorf("first id = %q; want ST-0C0S0S1", first.Value)
	}
	if first.Status != identity.IDAvailable {
		t.Errorf("first id status = %q; want %q", first.Status, identity.IDAvailable)
	}

	second, err := f.svc.GenerateStaffID(ctx)
	if err != nil {
		t.Fatalf("GenerateStaffID() failed: %v", err)
	}
	if second.Value != "ST-0C0S0S2" {
		t.Errorf("second id = %q; want ST-0C0S0S2", second.Value)
	}

	// sequences are independent per type
	rp, err := f.svc.GenerateResourcePersonID(ctx)
	if err != nil {
		t.Fatalf("GenerateResourcePersonID() failed: %v", err)
	}
	if rp.Value != "RP-0C0S0S1" {
		t.Errorf("resource person id = %q; want RP-0C0S0S1", rp.Value)
	}
}

func TestGenerateSkipsGaps(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	// an out-of-band record holds a higher number
	if _, err := f.ids.CreateGeneratedID(ctx, identity.GeneratedID{
		Value: "ST-0C0S0S9", Type: identity.TypeStaff, Status: identity.IDActivated,
	}); err != nil {
		t.Fatalf("seeding id: %v", err)
	}

	gid, err := f.svc.GenerateStaffID(ctx)
	if err != nil {
		t.Fatalf("GenerateStaffID() failed: %v", err)
	}
	if gid.Value != "ST-0C0S0S10" {
		t.Errorf("id = %q; want ST-0C0S0S10", gid.Value)
	}
}

func TestValidateAndActivate(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	gid, err := f.svc.GenerateStaffID(ctx)
	if err != nil {
		t.Fatalf("GenerateStaffID() failed: %v", err)
	}

	res, err := f.svc.ValidateAndActivate(ctx, gid.Value, "mary@test.ke")
	if err != nil {
		t.Fatalf("ValidateAndActivate() failed: %v", err)
	}
	if !res.IsValid {
		t.Fatalf("available id rejected: %+v", res)
	}

	stored, err := f.svc.GetByValue(ctx, gid.Value)
	if err != nil {
		t.Fatalf("reloading id: %v", err)
	}
	if stored.Status != identity.IDAssigned {
		t.Errorf("status = %q; want %q", stored.Status, identity.IDAssigned)
	}
	if stored.AssignedTo != "mary@test.ke" {
		t.Errorf("assignedTo = %q; want mary@test.ke", stored.AssignedTo)
	}
	if !stored.AssignedAt.Valid {
		t.Error("assignedAt not set")
	}

	// same email may resume the wizard
	res, err = f.svc.ValidateAndActivate(ctx, gid.Value, "mary@test.ke")
	if err != nil {
		t.Fatalf("ValidateAndActivate() retry failed: %v", err)
	}
	if !res.IsValid {
		t.Errorf("resume rejected: %+v", res)
	}

	// another email may not take it
	res, err = f.svc.ValidateAndActivate(ctx, gid.Value, "peter@test.ke")
	if err != nil {
		t.Fatalf("ValidateAndActivate() failed: %v", err)
	}
	if res.IsValid {
		t.Error("id assigned to mary validated for peter")
	}
	if res.Message == "" {
		t.Error("rejection carries no message")
	}
}

func TestValidateAndActivateRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		seed  func(f fixtures)
		value string
		email string
	}{
		{
			name:  "unknown id",
			seed:  func(fixtures) {},
			value: "ST-0C0S0S404",
			email: "x@test.ke",
		},
		{
			name: "activated id",
			seed: func(f fixtures) {
				_, _ = f.ids.CreateGeneratedID(ctx, identity.GeneratedID{
					Value: "ST-0C0S0S1", Type: identity.TypeStaff, Status: identity.IDActivated, AssignedTo: "x@test.ke",
				})
			},
			value: "ST-0C0S0S1",
			email: "x@test.ke",
		},
		{
			name: "deactivated id",
			seed: func(f fixtures) {
				_, _ = f.ids.CreateGeneratedID(ctx, identity.GeneratedID{
					Value: "ST-0C0S0S1", Type: identity.TypeStaff, Status: identity.IDDeactivated,
				})
			},
			value: "ST-0C0S0S1",
			email: "x@test.ke",
		},
		{
			name: "email already holds an activated id",
			seed: func(f fixtures) {
				_, _ = f.ids.CreateGeneratedID(ctx, identity.GeneratedID{
					Value: "ST-0C0S0S1", Type: identity.TypeStaff, Status: identity.IDActivated, AssignedTo: "x@test.ke",
				})
				_, _ = f.ids.CreateGeneratedID(ctx, identity.GeneratedID{
					Value: "ST-0C0S0S2", Type: identity.TypeStaff, Status: identity.IDAvailable,
				})
			},
			value: "ST-0C0S0S2",
			email: "x@test.ke",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures()
			tt.seed(f)

			res, err := f.svc.ValidateAndActivate(ctx, tt.value, tt.email)
			if err != nil {
				t.Fatalf("ValidateAndActivate() failed: %v", err)
			}
			if res.IsValid {
				t.Errorf("validated; want rejection")
			}
			if res.Message == "" {
				t.Errorf("rejection carries no message")
			}
		})
	}
}

func TestFinalizeActivation(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	gid, _ := f.svc.GenerateResourcePersonID(ctx)
	if _, err := f.svc.ValidateAndActivate(ctx, gid.Value, "aisha@test.ke"); err != nil {
		t.Fatalf("ValidateAndActivate() failed: %v", err)
	}

	got, err := f.svc.FinalizeActivation(ctx, identity.Finalization{
		Value:      gid.Value,
		Email:      "aisha@test.ke",
		Name:       "Aisha Omar",
		Phone:      "0712345678",
		Speciality: "irrigation",
	})
	if err != nil {
		t.Fatalf("FinalizeActivation() failed: %v", err)
	}
	if got.Status != identity.IDActivated {
		t.Errorf("status = %q; want %q", got.Status, identity.IDActivated)
	}
	if !got.ActivatedAt.Valid {
		t.Error("activatedAt not set")
	}

	rp, err := f.rps.GetResourcePersonByID(ctx, gid.Value)
	if err != nil {
		t.Fatalf("loading resource person: %v", err)
	}
	if rp.Name != "Aisha Omar" || rp.Speciality != "irrigation" {
		t.Errorf("resource person record = %+v", rp)
	}
}

func TestFinalizeActivationWrongEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	gid, _ := f.svc.GenerateStaffID(ctx)
	_, _ = f.svc.ValidateAndActivate(ctx, gid.Value, "owner@test.ke")

	_, err := f.svc.FinalizeActivation(ctx, identity.Finalization{
		Value: gid.Value,
		Email: "intruder@test.ke",
		Name:  "Intruder",
		Phone: "0700000000",
	})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("err = %v; want validation error", err)
	}
}

func TestAdminFree(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	gid, _ := f.svc.GenerateStaffID(ctx)
	_, _ = f.svc.ValidateAndActivate(ctx, gid.Value, "leaver@test.ke")

	freed, err := f.svc.AdminFree(ctx, gid.Value, "left the program")
	if err != nil {
		t.Fatalf("AdminFree() failed: %v", err)
	}
	if freed.Status != identity.IDAvailable {
		t.Errorf("status = %q; want %q", freed.Status, identity.IDAvailable)
	}
	if freed.AssignedTo != "" || freed.AssignedAt.Valid {
		t.Errorf("assignment not cleared: %+v", freed)
	}
	if freed.UsageCount != 1 {
		t.Errorf("usageCount = %d; want 1", freed.UsageCount)
	}
	if freed.FreedReason != "left the program" || !freed.FreedAt.Valid {
		t.Errorf("audit trail missing: %+v", freed)
	}

	// the freed id can be claimed again
	res, err := f.svc.ValidateAndActivate(ctx, gid.Value, "next@test.ke")
	if err != nil {
		t.Fatalf("ValidateAndActivate() after free failed: %v", err)
	}
	if !res.IsValid {
		t.Errorf("freed id rejected: %+v", res)
	}
}

func TestAdminFreeRequiresAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	gid, _ := f.svc.GenerateStaffID(ctx)

	_, err := f.svc.AdminFree(ctx, gid.Value, "cleanup")
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("err = %v; want validation error", err)
	}
}

func TestDeleteStaffFreesID(t *testing.T) {
	ctx := context.Background()
	f := newFixtures()

	gid, _ := f.svc.GenerateStaffID(ctx)
	_, _ = f.svc.ValidateAndActivate(ctx, gid.Value, "staff@test.ke")
	if _, err := f.svc.FinalizeActivation(ctx, identity.Finalization{
		Value: gid.Value, Email: "staff@test.ke", Name: "Staff Member", Phone: "0711111111", Role: "trainer",
	}); err != nil {
		t.Fatalf("FinalizeActivation() failed: %v", err)
	}

	if err := f.svc.DeleteStaff(ctx, gid.Value); err != nil {
		t.Fatalf("DeleteStaff() failed: %v", err)
	}

	if _, err := f.staff.GetStaffByID(ctx, gid.Value); errors.Cause(err) != identity.ErrPersonNotFound {
		t.Errorf("staff record still present, err = %v", err)
	}

	stored, err := f.svc.GetByValue(ctx, gid.Value)
	if err != nil {
		t.Fatalf("reloading id: %v", err)
	}
	if stored.Status != identity.IDAvailable {
		t.Errorf("id status = %q; want %q", stored.Status, identity.IDAvailable)
	}
	if stored.UsageCount != 1 {
		t.Errorf("usageCount = %d; want 1", stored.UsageCount)
	}
}
