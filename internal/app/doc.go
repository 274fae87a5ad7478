// Package app is the composition root of the backoffice client.
//
// # Overview
//
// Run loads configuration, points the global logger at the log file, and
// builds the API client, response cache, session service and admin screens
// before handing them to the terminal UI. It blocks until the operator quits
// or the context is cancelled.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()       Defaults, TOML file, BACKOFFICE_* env
//	       ├─────> logging.Init()      JSON lines to log.file
//	       ├─────> api.NewClient()     Cookie jar, circuit breaker
//	       ├─────> query.New()         Cache-backed reads and invalidation
//	       ├─────> session.New()       Auth state machine
//	       ├─────> metrics.Serve()     Only when metrics.addr is set
//	       ├─────> Poller.Start()      Only when refresh.interval > 0
//	       └─────> ui.Run()            Start TUI (blocks)
//
// # Background Refresh
//
// The UI tells the Poller which list key is on screen. Every interval the
// Poller refetches that key while the session is authenticated, so the list
// view picks up changes made elsewhere on its next tick. Failures leave the
// cached rows in place and double the delay, up to eight intervals or 30
// seconds, whichever is longer. A 401 expires the session, which sends the
// UI back to the login view.
//
// # Error Handling
//
// Only configuration, log file and client setup errors are returned from
// Run. Everything after the UI starts is shown to the operator and logged.
package app
