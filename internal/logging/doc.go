// Package logging wraps zerolog with the process-wide configuration used by
// the backoffice client and the development server.
//
// # Overview
//
// Init replaces the global logger and may be called more than once. Until
// it runs, everything logged goes to io.Discard. Component returns a child
// logger tagged with a "component" field, which is how each package gets
// its logger:
//
//	logging.Init(logging.Config{Level: "debug", Format: "json", Output: f})
//	log := logging.Component("poller")
//	log.Warn().Err(err).Msg("refresh failed")
//
// # Outputs
//
// The terminal client owns the screen, so it writes JSON lines to a file
// opened with OpenFile. The activity view tails that same file. The
// development server logs to stderr, as JSON or through zerolog's console
// writer.
//
// # Levels
//
// ParseLevel accepts trace, debug, info, warn, error and disabled, and falls
// back to info for anything else.
package logging
