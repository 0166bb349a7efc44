// Package http provides HTTP handlers and middleware for the campus API.
//
// The router exposes the following endpoint groups:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response carries the token, its expiry, and the signed-in user, with
//     the token also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie. DELETE /sessions/current revokes the caller's
//     token and clears the cookie.
//   - /users: administrator controlled account management plus the per-user
//     sub-resources (wallet, borrows, skills, bookings, orders) exchanging
//     the DTOs defined alongside each handler.
//   - /books and /borrows: library catalog, circulation, fines, and the
//     librarian overdue scan.
//   - /events: event catalog, registration with waitlisting, attendance.
//   - /sos: emergency alerts and their response workflow.
//   - /leaderboard: score submission, per-skill and overall rankings.
//   - /rooms and /bookings: classroom catalog and conflict-checked bookings.
//   - /menu and /orders: canteen menu management and wallet-settled orders.
//   - /notifications: the per-user inbox.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
