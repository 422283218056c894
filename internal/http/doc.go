// Package http provides HTTP handlers and middleware for the room
// reservation API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal"} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie and clears the cookie.
//   - GET /calendar, GET /calendar/{month}/{day}: weekly free-slot overview,
//     starting today or at the given date of the season year.
//   - GET /days/{month}/{day}: one day's rooms × periods sheet.
//   - GET /days/{month}/{day}/periods/{period}: units still open for the
//     slot plus the reservations already taken.
//   - GET /units/{id}/bookings?month=&day=: reservation form state for one
//     unit and date. POST on the same path creates the reservation.
//   - GET /bookings/{id}, PUT /bookings/{id}, DELETE /bookings/{id}: read,
//     edit and cancel a reservation, exchanging the `scheduleDTO` payload
//     defined in booking_handler.go.
//   - GET /me: the caller's upcoming and past reservations with audit history.
//   - GET /admin/users, GET /admin/users/{id}: administrator reports.
//
// All routes except POST /sessions require a valid session. Request and
// response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
