package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campus-reservation/internal/persistence"
	"github.com/example/campus-reservation/internal/testfixtures"
)

func TestUnitRepositorySlotUnique(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	room, unit := harness.SeedBookableUnit(t, testfixtures.NewRoomFixture(), testfixtures.NewUnitFixture(
		testfixtures.WithUnitSlot(1, 2),
	))

	clash := testfixtures.NewUnitFixture(
		testfixtures.WithUnitRoomID(room.ID),
		testfixtures.WithUnitSlot(unit.Weekday, unit.Period),
	)
	err := harness.Units.CreateUnit(ctx, clash.Persistence())
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("CreateUnit() for the taken slot error = %v, want ErrDuplicate", err)
	}
}

func TestUnitRepositoryUnknownRoom(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	orphan := testfixtures.NewUnitFixture(testfixtures.WithUnitRoomID("room-missing"))
	err := harness.Units.CreateUnit(ctx, orphan.Persistence())
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("CreateUnit() with unknown room error = %v, want ErrForeignKeyViolation", err)
	}
}

func TestUnitRepositoryListUnitsFilter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	room := testfixtures.NewRoomFixture()
	_, monday := harness.SeedBookableUnit(t, room, testfixtures.NewUnitFixture(testfixtures.WithUnitSlot(0, 1)))

	tuesday := testfixtures.NewUnitFixture(
		testfixtures.WithUnitRoomID(room.ID),
		testfixtures.WithUnitSlot(1, 1),
	)
	if err := harness.Units.CreateUnit(ctx, tuesday.Persistence()); err != nil {
		t.Fatalf("CreateUnit() error = %v", err)
	}

	weekday := 0
	units, err := harness.Units.ListUnits(ctx, persistence.UnitFilter{Weekday: &weekday})
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(units) != 1 || units[0].ID != monday.ID {
		t.Errorf("weekday filter = %+v, want %s only", units, monday.ID)
	}

	period := 1
	units, err = harness.Units.ListUnits(ctx, persistence.UnitFilter{Period: &period})
	if err != nil {
		t.Fatalf("ListUnits() error = %v", err)
	}
	if len(units) != 2 {
		t.Errorf("period filter rows = %d, want 2", len(units))
	}
}
