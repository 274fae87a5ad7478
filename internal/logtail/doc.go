// Package logtail reads the end of the backoffice log file for the activity
// view.
//
// Read returns the last N lines using a ring buffer of size N, so memory is
// bounded by the number of lines kept rather than the file size. A missing
// file is not an error; the client may not have written anything yet.
//
// The client logs zerolog JSON lines. Parse decodes one line into an Entry
// with the time, level, component, message and error split out and every
// other key kept in Fields. Lines that are not JSON are passed through as
// plain messages. Format renders an Entry as one line of text:
//
//	10:04:05 WARN  [api] request failed method=GET status=503
package logtail
