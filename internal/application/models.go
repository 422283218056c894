package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// Faculty identifies the department a course belongs to.
type Faculty string

// The eight faculties a reservation may be registered under.
const (
	FacultyLetters     Faculty = "文学部"
	FacultyEconomics   Faculty = "経済学部"
	FacultyLaw         Faculty = "法学部"
	FacultyCommerce    Faculty = "商学部"
	FacultyMedicine    Faculty = "医学部"
	FacultyScienceTech Faculty = "理工学部"
	FacultyPharmacy    Faculty = "薬学部"
	FacultyOther       Faculty = "その他"
)

// Faculties returns the selectable faculty values in display order.
func Faculties() []Faculty {
	return []Faculty{
		FacultyLetters,
		FacultyEconomics,
		FacultyLaw,
		FacultyCommerce,
		FacultyMedicine,
		FacultyScienceTech,
		FacultyPharmacy,
		FacultyOther,
	}
}

// Valid reports whether the faculty is one of the selectable values.
func (f Faculty) Valid() bool {
	for _, candidate := range Faculties() {
		if f == candidate {
			return true
		}
	}
	return false
}

// LogType labels an audit log entry with the mutation it mirrors.
type LogType string

const (
	LogTypeCreate LogType = "CREATE"
	LogTypeUpdate LogType = "UPDATE"
	LogTypeDelete LogType = "DELETE"
)

// Room represents a bookable classroom.
type Room struct {
	ID       string
	Name     string
	Capacity int
}

// Unit represents a recurring weekly slot: one room at one period on one
// weekday (Monday=0).
type Unit struct {
	ID      string
	Room    Room
	Weekday int
	Period  int
}

// Schedule represents a reservation of a unit on a concrete date.
type Schedule struct {
	ID           string
	Unit         Unit
	Date         time.Time
	Faculty      Faculty
	Course       string
	SubscriberID string
	NumStudents  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Log is one immutable audit record describing a schedule mutation.
type Log struct {
	ID          string
	UserID      string
	CreatedAt   time.Time
	Type        LogType
	Unit        Unit
	Date        time.Time
	Faculty     Faculty
	Course      string
	NumStudents int
}

// User represents an account as exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// BookingInput captures the caller-provided reservation fields.
type BookingInput struct {
	Course      string
	Faculty     Faculty
	NumStudents int
}

// CreateBookingParams wraps the data required to book a unit on a date.
type CreateBookingParams struct {
	Principal Principal
	UnitID    string
	Date      time.Time
	Input     BookingInput
}

// UpdateBookingParams wraps the data required to edit an existing reservation.
type UpdateBookingParams struct {
	Principal  Principal
	ScheduleID string
	Input      BookingInput
}

// BookingForm is the read model backing the reservation form for one unit
// and date. When the slot cannot be booked, Message carries the reason and
// Existing points at the reservation occupying the slot, if any.
type BookingForm struct {
	Unit      Unit
	Date      time.Time
	CanBook   bool
	Message   string
	Existing  *Schedule
	Faculties []Faculty
}

// ScheduleDetail is the edit-view read model for a single reservation.
type ScheduleDetail struct {
	Schedule Schedule
	CanEdit  bool
}

// MyPageView groups a user's own reservations and audit history.
type MyPageView struct {
	Upcoming []Schedule
	Past     []Schedule
	Logs     []Log
}

// CalendarCell is one day × period slot in the weekly overview.
type CalendarCell struct {
	Date   time.Time
	Free   int
	Booked int
	Locked bool
}

// CalendarRow carries the seven cells of one period across the displayed week.
type CalendarRow struct {
	Period int
	Cells  []CalendarCell
}

// WeekOverview is the weekly calendar read model.
type WeekOverview struct {
	Days     []time.Time
	StartDay time.Time
	EndDay   time.Time
	Previous time.Time
	Next     time.Time
	Today    time.Time
	Rows     []CalendarRow
}

// DayCell is one room × period slot on the day sheet: empty, an open unit,
// or a booked schedule.
type DayCell struct {
	Unit     *Unit
	Schedule *Schedule
}

// DayRoomRow carries one room's five period cells for a day.
type DayRoomRow struct {
	Room  Room
	Cells []DayCell
}

// DaySheet is the single-day browsing read model.
type DaySheet struct {
	Date      time.Time
	Today     time.Time
	Available bool
	Rooms     []DayRoomRow
}

// PeriodSlots lists what can still be booked for one date and period, plus
// the reservations already taken for display.
type PeriodSlots struct {
	Date      time.Time
	Period    int
	OpenUnits []Unit
	Booked    []Schedule
}

// UserSummary is one row of the all-users administrative report.
type UserSummary struct {
	User          User
	UpcomingCount int
	PastCount     int
	LogCount      int
}

// UserSummaries is the all-users administrative report.
type UserSummaries struct {
	Users            []UserSummary
	NumUsers         int
	NumSchedules     int
	NumPastSchedules int
	NumLogs          int
}

// UserActivity is the single-user administrative report.
type UserActivity struct {
	User     User
	Upcoming []Schedule
	Past     []Schedule
	Logs     []Log
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    User
	Session Session
}
