// Package prefs handles backoffice user preferences persistence.
//
// # Overview
//
// Preferences live in a small TOML file, ~/.config/backoffice/prefs.toml by
// default:
//
//	theme = "Kanagawa"
//	last_username = "admin"
//
// The password is never stored.
//
// # Loading
//
// Load never fails the caller. A missing, unreadable or malformed file
// yields the defaults, so a broken preferences file cannot keep the client
// from starting.
//
// # Saving
//
// Save creates parent directories as needed. Update loads, applies a change
// and saves in one call, and its error is the caller's to log.
package prefs
