package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campus-reservation/internal/persistence"
	"github.com/example/campus-reservation/internal/testfixtures"
)

func TestUserRepositoryEmailLookup(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	user := harness.SeedUser(t, testfixtures.NewUserFixture(
		testfixtures.WithUserEmail("Taro@keio.jp"),
	))

	// Lookup ignores case.
	found, err := harness.Users.GetUserByEmail(ctx, "taro@KEIO.JP")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("found.ID = %q, want %q", found.ID, user.ID)
	}

	if _, err := harness.Users.GetUserByEmail(ctx, "nobody@keio.jp"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("GetUserByEmail() for unknown address error = %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryEmailUnique(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	harness.SeedUser(t, testfixtures.NewUserFixture(
		testfixtures.WithUserEmail("taro@keio.jp"),
	))

	// Uniqueness is case-insensitive too.
	clash := testfixtures.NewUserFixture(testfixtures.WithUserEmail("TARO@keio.jp"))
	err := harness.Users.CreateUser(ctx, clash.Persistence())
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("CreateUser() with duplicate email error = %v, want ErrDuplicate", err)
	}
}

func TestUserRepositoryListUsers(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	first := harness.SeedUser(t, testfixtures.NewUserFixture())
	second := harness.SeedUser(t, testfixtures.NewUserFixture(testfixtures.WithUserDisabled()))

	users, err := harness.Users.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsers() rows = %d, want 2", len(users))
	}
	// Creation order is preserved.
	if users[0].ID != first.ID || users[1].ID != second.ID {
		t.Errorf("order = %s, %s; want %s, %s", users[0].ID, users[1].ID, first.ID, second.ID)
	}
	if !users[1].Disabled {
		t.Error("disabled flag must round-trip")
	}
}
