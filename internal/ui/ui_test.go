package ui

import (
	"context"
	"fmt"
	"testing"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/session"
	"github.com/hardbound/stacks/internal/shared"
	mocks "github.com/hardbound/stacks/internal/testing"
	"github.com/hardbound/stacks/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// signedInModel builds a model whose session store holds an authenticated
// principal with a persisted token, the state the dashboard fetches run in.
func signedInModel(t *testing.T) (*Model, *session.Store, *mocks.MemKeystore) {
	t.Helper()

	svc := &mocks.MockService{
		LoginFn: func(ctx context.Context, username, password string) (*services.Grant, error) {
			return &services.Grant{
				Token: &oauth2.Token{AccessToken: "tok-alice", TokenType: "Bearer"},
				Identity: models.Identity{
					ID:       "u-1",
					Username: "alice",
					Email:    "alice@example.com",
					Role:     models.RoleMember,
				},
			}, nil
		},
	}
	keys := mocks.NewMemKeystore()

	sess := session.NewStore(session.StoreOpts{Auth: svc, Keystore: keys})
	sess.Bootstrap(context.Background())
	_, err := sess.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.True(t, sess.Authenticated())

	themes := theme.NewStore(theme.StoreOpts{
		Keystore:   mocks.NewMemKeystore(),
		DetectDark: func() bool { return true },
	})

	m := NewModel(context.Background(), sess, themes, svc)
	m.view = DashboardView
	return m, sess, keys
}

func TestTokenRevokedMidSession(t *testing.T) {
	revoked := fmt.Errorf("%w: token revoked", shared.ErrNotAuthenticated)

	t.Run("stats fetch rejection invalidates the session", func(t *testing.T) {
		m, sess, keys := signedInModel(t)

		updated, _ := m.Update(statsFetchedMsg{err: revoked})
		m = updated.(*Model)

		assert.False(t, sess.Authenticated())
		assert.Equal(t, GuardRedirect, Resolve(sess.Phase(), sess.Authenticated()))
		assert.Equal(t, LoginView, m.view)
		assert.Equal(t, 0, keys.Len(), "persisted token and identity must be cleared")
		assert.Equal(t, "Your session has expired. Please sign in again.", sess.LastError())
	})

	t.Run("books fetch rejection invalidates the session", func(t *testing.T) {
		m, sess, keys := signedInModel(t)

		updated, _ := m.Update(booksFetchedMsg{err: revoked})
		m = updated.(*Model)

		assert.False(t, sess.Authenticated())
		assert.Equal(t, LoginView, m.view)
		assert.Equal(t, 0, keys.Len())
	})

	t.Run("loans fetch rejection invalidates the session", func(t *testing.T) {
		m, sess, keys := signedInModel(t)

		updated, _ := m.Update(loansFetchedMsg{err: revoked})
		m = updated.(*Model)

		assert.False(t, sess.Authenticated())
		assert.Equal(t, LoginView, m.view)
		assert.Equal(t, 0, keys.Len())
	})

	t.Run("unrelated fetch failures keep the session", func(t *testing.T) {
		m, sess, _ := signedInModel(t)

		updated, _ := m.Update(statsFetchedMsg{err: fmt.Errorf("%w: 502", shared.ErrAPIRequest)})
		m = updated.(*Model)

		assert.True(t, sess.Authenticated())
		assert.Equal(t, DashboardView, m.view)
		assert.Error(t, m.err)
	})
}
