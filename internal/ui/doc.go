// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides the page layer of the library client:
//  1. [LoginView] / [RegisterView] : Credential and account forms
//  2. [DashboardView] : Aggregate catalog stats
//  3. [BooksView] : Browsable, filterable catalog listing
//  4. [LoansView] : Open loans with periodic refresh
//
// Every protected view is gated through [Resolve], the route guard: while the
// session store is bootstrapping the TUI shows a spinner, and only once the
// store reaches Idle does it either render the protected view or fall back to
// the login form. The session store itself lives outside this package and is
// injected into the [Model]; the TUI is just one of its consumers.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
