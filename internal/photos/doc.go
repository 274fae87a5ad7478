// Package photos manages the ordered photo list attached to a content item
// and the ingestion of new photos from URLs or local image files.
//
// Local files are embedded as base64 data URLs. Embedding inflates the
// request payload by about a third; there is no size ceiling, only a logged
// warning above the configured threshold.
package photos
