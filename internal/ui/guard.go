package ui

import (
	"github.com/hardbound/stacks/internal/session"
)

// GuardOutcome is the route guard's decision for a protected view.
type GuardOutcome int

const (
	// GuardLoading renders a neutral placeholder; the persisted session is
	// still being restored and no gating decision is final yet.
	GuardLoading GuardOutcome = iota
	// GuardAllow renders the protected content.
	GuardAllow
	// GuardRedirect sends the user to the login view.
	GuardRedirect
)

// Resolve gates rendering of protected views based on session state.
//
// The phase check comes before the principal check. Redirecting while the
// store is still bootstrapping would bounce a signed-in user whose session
// just hasn't been restored yet.
func Resolve(phase session.Phase, authenticated bool) GuardOutcome {
	if phase == session.PhaseBootstrapping {
		return GuardLoading
	}
	if authenticated {
		return GuardAllow
	}
	return GuardRedirect
}
