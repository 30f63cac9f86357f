package store

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)

	us := NewUserStore(db)
	u, err := us.Create(h.ID, "Frodo", "Baggins", "frodo@shire.test", "hash", "children")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !u.PointsOwned.IsZero() {
		t.Errorf("points_owned = %s, want 0", u.PointsOwned)
	}

	got, err := us.GetByEmail("frodo@shire.test")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("get by email returned %v, want user %d", got, u.ID)
	}

	missing, err := us.GetByEmail("gollum@shire.test")
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)

	us := NewUserStore(db)
	if _, err := us.Create(h.ID, "Frodo", "Baggins", "frodo@shire.test", "hash", "children"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := us.Create(h.ID, "Other", "Frodo", "frodo@shire.test", "hash", "children")
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
	if !IsDuplicateEmail(err) {
		t.Errorf("IsDuplicateEmail(%v) = false, want true", err)
	}
}

func TestUserAddPoints(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)
	u := seedUser(t, db, h.ID, "Frodo", "frodo@shire.test", "children")

	us := NewUserStore(db)

	// Uneven splits keep their fraction.
	got, err := us.AddPoints(u.ID, decimal.RequireFromString("2.5"))
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if got.PointsOwned.String() != "2.5" {
		t.Errorf("points = %s, want 2.5", got.PointsOwned)
	}

	got, err = us.AddPoints(u.ID, decimal.NewFromInt(-1))
	if err != nil {
		t.Fatalf("subtract points: %v", err)
	}
	if got.PointsOwned.String() != "1.5" {
		t.Errorf("points = %s, want 1.5", got.PointsOwned)
	}

	got, err = us.AddPoints(999, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("add points to missing user: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing user", got)
	}
}

func TestHouseholdInviteCode(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)

	h, err := hs.Create("Baggins")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.InviteCode == "" {
		t.Fatal("invite code not generated")
	}

	got, err := hs.GetByInviteCode(h.InviteCode)
	if err != nil {
		t.Fatalf("get by invite code: %v", err)
	}
	if got == nil || got.ID != h.ID {
		t.Fatalf("lookup by invite code failed")
	}

	fresh, err := hs.RotateInviteCode(h.ID)
	if err != nil {
		t.Fatalf("rotate invite code: %v", err)
	}
	if fresh == h.InviteCode {
		t.Error("rotation kept the old code")
	}

	stale, err := hs.GetByInviteCode(h.InviteCode)
	if err != nil {
		t.Fatalf("get by stale code: %v", err)
	}
	if stale != nil {
		t.Error("stale invite code still resolves")
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	h := seedHousehold(t, db)
	u := seedUser(t, db, h.ID, "Frodo", "frodo@shire.test", "children")

	ss := NewSessionStore(db)
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got == nil || got.UserID != u.ID {
		t.Fatal("session lookup failed")
	}

	if err := ss.Delete(sess.Token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	got, err = ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get deleted session: %v", err)
	}
	if got != nil {
		t.Error("deleted session still resolves")
	}
}
