// Package http provides HTTP handlers and middleware for the placement API.
//
// Every response body is the envelope {"success","message","data","count"}.
// Validation failures answer 400 with "errors" (field to message) and
// "messages"; other failures carry a message only.
//
// The router exposes the following endpoints under /api/v1:
//   - /auth: POST /register and POST /login return {"token","expiresAt","user"}
//     and set the httpOnly `token` cookie. POST /logout clears it. GET /profile
//     and GET /users/{id} need any role; GET /users and PUT /profile/role/{id}
//     are admin only.
//   - /company: CRUD over company profiles plus GET /dashboard for companies.
//   - /student: CRUD over student profiles.
//   - /placementDrive: drives are readable by everyone, writable by admins.
//   - /job: jobs are readable by everyone, writable by companies and admins.
//     GET / accepts a companyId filter.
//   - /application: students apply with POST / and read GET /my. Companies read
//     GET /company, optionally filtered by jobId and status, and review with
//     PUT /{id}.
//   - /interview: companies and admins schedule and update interviews. Students
//     read GET /my and companies GET /company.
//   - /report: admin only. GET /export and GET /{id}/export answer xlsx
//     workbooks.
//
// Everything except register, login, logout and GET /health requires a bearer
// token or the token cookie. The principal is reloaded from storage on every
// request, so role changes apply without a new login.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
