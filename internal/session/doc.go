// Package session holds the operator's authentication state for the
// backoffice client.
//
// # Overview
//
// Service is a small state machine over the content API's session cookie:
//
//	Unauthenticated ──Initialize──> Loading ──200──> Authenticated
//	                                   └─────401──> Unauthenticated
//	Authenticated ──Logout / Expire──> Unauthenticated
//
// Initialize asks /api/me once for the life of the Service. Later and
// concurrent callers get the first answer. A 401 is the normal signed-out
// reply and is not an error.
//
// # Login and Logout
//
// Login trims the username, rejects empty fields locally and posts the
// credentials. On success the returned user is primed into the response
// cache under /api/me so other readers see it without another request. A
// failed login leaves the cache as it was.
//
// Logout always clears local state, even when the request fails; the error
// is returned for display only. Expire is what callers use after any request
// answers 401.
//
// # Subscribers
//
// Subscribe returns a buffered channel of Change values. A subscriber that
// falls behind misses changes rather than blocking the service. Teardown
// closes every channel; Initialize, Login and Logout return ErrClosed
// afterwards.
//
// # Usage Example
//
//	sess := session.New(qc, logging.Component("session"))
//	defer sess.Teardown()
//	if err := sess.Initialize(ctx); err != nil {
//		return err
//	}
//	if !sess.IsAuthenticated() {
//		_, err = sess.Login(ctx, username, password)
//	}
package session
