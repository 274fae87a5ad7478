// Package content defines the content variants managed by the back office,
// their json shapes, validation rules and the schemas that drive the
// generic admin screens.
//
// Every variant embeds Meta (id, photos, timestamps) and is handled through
// its pointer type, which implements Entity. A Schema lists the variant's
// resource path, list columns and editable fields; the admin package builds
// one Manager per schema instead of a hand-written screen per variant.
//
// Validate runs the same struct-tag rules on the client before a request is
// sent and in the development server before a write is accepted.
package content
