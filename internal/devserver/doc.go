// Package devserver is an in-memory implementation of the content API used
// for local development and as the handler layer in integration tests.
//
// It keeps one operator account with a bcrypt-hashed password, issues
// HttpOnly SameSite=Lax session cookies, validates writes with the same
// rules as the client and answers validation failures with
//
//	{"error": "validation failed", "fields": {"name": "name is required"}}
//
// Products, blogs, gallery and portfolio are publicly readable. Customers
// and inquiries are readable only with a session; inquiries may be created
// by anyone. Login attempts are rate limited per client IP.
package devserver
