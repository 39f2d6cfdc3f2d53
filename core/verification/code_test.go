package verification

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d out of range", n)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("50 generated codes were all identical")
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	store := NewInmemCodeStore()

	pending := PendingRegistration{Code: "123456", PasswordHash: []byte("hash")}
	if err := store.Put(ctx, "a@test.ke", pending, time.Minute); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if _, err := Verify(ctx, store, "a@test.ke", "654321"); err != ErrCodeMismatch {
		t.Errorf("Verify() wrong code err = %v; want ErrCodeMismatch", err)
	}
	// a mismatch does not consume the entry
	got, err := Verify(ctx, store, "a@test.ke", "123456")
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	// the parked credentials come back to the caller
	if string(got.PasswordHash) != "hash" {
		t.Errorf("Verify() hash = %q; want the parked one", got.PasswordHash)
	}
	// success consumes
	if _, err := Verify(ctx, store, "a@test.ke", "123456"); err != ErrCodeNotFound {
		t.Errorf("Verify() reuse err = %v; want ErrCodeNotFound", err)
	}

	if _, err := Verify(ctx, store, "nobody@test.ke", "123456"); err != ErrCodeNotFound {
		t.Errorf("Verify() unknown email err = %v; want ErrCodeNotFound", err)
	}
}

func TestInmemCodeStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewInmemCodeStore()

	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	if err := store.Put(ctx, "a@test.ke", PendingRegistration{Code: "123456"}, 10*time.Minute); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if _, err := store.Get(ctx, "a@test.ke"); err != nil {
		t.Fatalf("Get() before expiry failed: %v", err)
	}

	now = now.Add(10*time.Minute + time.Second)
	if _, err := store.Get(ctx, "a@test.ke"); err != ErrCodeNotFound {
		t.Errorf("Get() after expiry err = %v; want ErrCodeNotFound", err)
	}
}

func TestInmemCodeStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewInmemCodeStore()

	_ = store.Put(ctx, "a@test.ke", PendingRegistration{Code: "111111"}, time.Minute)
	_ = store.Put(ctx, "a@test.ke", PendingRegistration{Code: "222222"}, time.Minute)

	p, err := store.Get(ctx, "a@test.ke")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if p.Code != "222222" {
		t.Errorf("Get() = %q; want the latest code", p.Code)
	}
}
