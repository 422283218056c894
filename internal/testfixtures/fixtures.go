package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/campus-reservation/internal/application"
	"github.com/example/campus-reservation/internal/persistence"
)

var (
	userCounter     uint64
	roomCounter     uint64
	unitCounter     uint64
	scheduleCounter uint64
	logCounter      uint64
	sessionCounter  uint64
)

// referenceTime falls on a Tuesday before the limited booking window of the
// 2021 season opens, which keeps season gated fixtures bookable by default.
var referenceTime = time.Date(2021, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@keio.jp", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserDisabled marks the account as disabled.
func WithUserDisabled() UserOption {
	return func(f *UserFixture) {
		f.Disabled = true
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email}
}

// AdminPrincipal returns an administrator principal derived from the fixture.
func (f UserFixture) AdminPrincipal() application.Principal {
	return application.Principal{UserID: f.ID, Email: f.Email, IsAdmin: true}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic classroom record.
type RoomFixture struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("教室%03d", idx),
		Capacity:  int(20 + idx%4*10),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{ID: f.ID, Name: f.Name, Capacity: f.Capacity}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Unit fixtures -----------------------------

// UnitFixture represents a deterministic weekly slot record.
type UnitFixture struct {
	ID      string
	RoomID  string
	Weekday int
	Period  int
}

// UnitOption configures the generated unit fixture.
type UnitOption func(*UnitFixture)

// NewUnitFixture returns a deterministic unit fixture with optional overrides.
// Generated units cycle through weekdays and periods so consecutive fixtures
// never collide on (room, weekday, period).
func NewUnitFixture(opts ...UnitOption) UnitFixture {
	idx := atomic.AddUint64(&unitCounter, 1)
	fixture := UnitFixture{
		ID:      fmt.Sprintf("unit-%03d", idx),
		RoomID:  fmt.Sprintf("room-%03d", idx),
		Weekday: int(idx % 5),
		Period:  int(idx%5) + 1,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUnitID overrides the generated unit ID.
func WithUnitID(id string) UnitOption {
	return func(f *UnitFixture) {
		f.ID = id
	}
}

// WithUnitRoomID sets the owning room.
func WithUnitRoomID(roomID string) UnitOption {
	return func(f *UnitFixture) {
		f.RoomID = roomID
	}
}

// WithUnitSlot sets weekday (Monday=0) and period.
func WithUnitSlot(weekday, period int) UnitOption {
	return func(f *UnitFixture) {
		f.Weekday = weekday
		f.Period = period
	}
}

// Application returns the fixture as an application.Unit joined to a room.
func (f UnitFixture) Application(room application.Room) application.Unit {
	return application.Unit{ID: f.ID, Room: room, Weekday: f.Weekday, Period: f.Period}
}

// Persistence returns the fixture as a persistence.Unit value.
func (f UnitFixture) Persistence() persistence.Unit {
	return persistence.Unit{ID: f.ID, RoomID: f.RoomID, Weekday: f.Weekday, Period: f.Period}
}

// --------------------------- Schedule fixtures ---------------------------

// ScheduleFixture represents a deterministic reservation record.
type ScheduleFixture struct {
	ID           string
	UnitID       string
	Date         time.Time
	Faculty      string
	Course       string
	SubscriberID string
	NumStudents  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*ScheduleFixture)

// NewScheduleFixture returns a deterministic schedule fixture with optional
// overrides. Dates advance one day per fixture so generated schedules never
// collide on (unit, date).
func NewScheduleFixture(opts ...ScheduleOption) ScheduleFixture {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	fixture := ScheduleFixture{
		ID:           fmt.Sprintf("schedule-%03d", idx),
		UnitID:       fmt.Sprintf("unit-%03d", idx),
		Date:         time.Date(2021, time.June, 21, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx%5)),
		Faculty:      string(application.FacultyLetters),
		Course:       fmt.Sprintf("講義%03d", idx),
		SubscriberID: fmt.Sprintf("user-%03d", idx),
		NumStudents:  10,
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithScheduleID overrides the schedule ID.
func WithScheduleID(id string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.ID = id
	}
}

// WithScheduleUnitID sets the reserved unit.
func WithScheduleUnitID(unitID string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.UnitID = unitID
	}
}

// WithScheduleDate sets the reservation date.
func WithScheduleDate(date time.Time) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Date = date
	}
}

// WithScheduleFaculty sets the faculty.
func WithScheduleFaculty(faculty string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Faculty = faculty
	}
}

// WithScheduleCourse sets the course name.
func WithScheduleCourse(course string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Course = course
	}
}

// WithScheduleSubscriber sets the booking user.
func WithScheduleSubscriber(userID string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.SubscriberID = userID
	}
}

// WithScheduleNumStudents sets the expected attendance.
func WithScheduleNumStudents(n int) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.NumStudents = n
	}
}

// Persistence returns the fixture as a persistence.Schedule value.
func (f ScheduleFixture) Persistence() persistence.Schedule {
	return persistence.Schedule{
		ID:           f.ID,
		UnitID:       f.UnitID,
		Date:         f.Date,
		Faculty:      f.Faculty,
		Course:       f.Course,
		SubscriberID: f.SubscriberID,
		NumStudents:  f.NumStudents,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Log returns an audit record snapshotting the fixture, as written alongside
// the mutation of the given type.
func (f ScheduleFixture) Log(logType string) persistence.Log {
	idx := atomic.AddUint64(&logCounter, 1)
	return persistence.Log{
		ID:          fmt.Sprintf("log-%03d", idx),
		UserID:      f.SubscriberID,
		CreatedAt:   referenceTime,
		Type:        logType,
		UnitID:      f.UnitID,
		Date:        f.Date,
		Faculty:     f.Faculty,
		Course:      f.Course,
		NumStudents: f.NumStudents,
	}
}

// ----------------------------- Session fixtures -------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUserID sets the user ID.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = id
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	var revoked *time.Time
	if f.RevokedAt != nil {
		t := *f.RevokedAt
		revoked = &t
	}
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: revoked,
	}
}
