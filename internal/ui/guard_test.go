package ui

import (
	"testing"

	"github.com/hardbound/stacks/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Run("bootstrapping always loads, even when a principal is already held", func(t *testing.T) {
		assert.Equal(t, GuardLoading, Resolve(session.PhaseBootstrapping, false))
		assert.Equal(t, GuardLoading, Resolve(session.PhaseBootstrapping, true))
	})

	t.Run("idle and authenticated allows", func(t *testing.T) {
		assert.Equal(t, GuardAllow, Resolve(session.PhaseIdle, true))
	})

	t.Run("idle and signed out redirects", func(t *testing.T) {
		assert.Equal(t, GuardRedirect, Resolve(session.PhaseIdle, false))
	})
}
