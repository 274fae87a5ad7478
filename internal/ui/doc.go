// Package ui is the terminal admin console built on Bubble Tea.
//
// # Architecture Overview
//
// Model follows the Elm architecture: Update receives key presses and the
// results of async commands, and View renders from state alone. Every
// network call runs inside a tea.Cmd and comes back as a typed message, so
// the model is never touched from another goroutine.
//
// # Package Structure
//
//   - app.go: Model, Options, Update dispatch, session sync and Run
//   - commands.go: messages and the commands that produce them
//   - login.go: sign-in form and error wording
//   - list.go: the resource table for the screen in view
//   - form.go: create/edit forms with photo handling
//   - modal.go: delete confirmation
//   - activity.go: the JSON log viewer
//   - header.go, help.go: chrome and the shortcut overlay
//   - theme.go, style_helpers.go, layout.go, strings.go: presentation helpers
//
// # Views
//
//   - Loading: while the initial session check runs
//   - Login: username and password, shown whenever the session is not authenticated
//   - List: one admin.Screen at a time, switched with tab or 1-9
//   - Form: create or edit the selected row; ctrl+s saves
//   - Activity: the tail of the log file, optionally following
//
// # Session handling
//
// The model subscribes to session transitions. Any transition back to
// unauthenticated shows the login view, and an auth_required error from a
// list, form or delete expires the session the same way. An open form
// survives the round trip and is shown again after signing in.
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Session: sess,
//		Query:   qc,
//		Screens: admin.NewScreens(qc),
//		Watcher: poller,
//		LogPath: "~/.local/state/backoffice/backoffice.log",
//	})
package ui
