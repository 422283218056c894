package persistence

import "time"

// User represents an account in the reservation domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable classroom.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unit represents a recurring weekly slot template: one room at one period on
// one weekday. Weekday follows the Monday=0 convention.
type Unit struct {
	ID      string
	RoomID  string
	Weekday int
	Period  int
}

// Schedule represents a concrete reservation of a unit on a single date.
type Schedule struct {
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

// Log is an append-only audit record mirroring one schedule mutation. The
// schedule fields are denormalized at write time so the record survives later
// edits or deletion of the schedule it describes.
type Log struct {
	ID          string
	UserID      string
	CreatedAt   time.Time
	Type        string
	UnitID      string
	Date        time.Time
	Faculty     string
	Course      string
	NumStudents int
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
