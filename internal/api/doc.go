// Package api provides the HTTP client for the catalog site's content API.
//
// # Overview
//
// Client issues JSON requests against a single origin. Credentials are an
// opaque session cookie set by POST /api/login; the client keeps it in a
// cookie jar and attaches it to every later request. No code outside the
// jar reads the cookie.
//
//	client, err := api.NewClient(api.Options{BaseURL: "127.0.0.1:8080"})
//	if err != nil {
//		return err
//	}
//	var user content.User
//	err = client.Do(ctx, http.MethodGet, "/api/me", nil, &user)
//
// # Error Handling
//
// Every failed request returns *Error with a Kind:
//
//   - KindAuthRequired: 401, no session or an expired one
//   - KindValidation: 400, Fields holds per-field messages when the server sent them
//   - KindNotFound: 404
//   - KindTransport: network failure, undecodable body, any other status, open breaker
//
// Callers branch with IsAuthRequired, IsValidation, IsNotFound and IsTransport
// or with errors.Is against the Err* sentinels.
//
// # Retries
//
// The client never retries. An optional circuit breaker fails fast after
// repeated transport failures or 5xx responses; 4xx responses never count
// against it.
package api
