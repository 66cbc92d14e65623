package theme_test

import (
	"testing"

	"github.com/hardbound/stacks/internal/repositories"
	mocks "github.com/hardbound/stacks/internal/testing"
	"github.com/hardbound/stacks/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func darkTerminal() bool  { return true }
func lightTerminal() bool { return false }

func TestNewStore(t *testing.T) {
	t.Run("follows the terminal background when nothing is persisted", func(t *testing.T) {
		keys := mocks.NewMemKeystore()

		dark := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: darkTerminal})
		assert.Equal(t, theme.ModeDark, dark.Mode())
		assert.False(t, dark.Explicit())

		light := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: lightTerminal})
		assert.Equal(t, theme.ModeLight, light.Mode())
	})

	t.Run("a persisted choice wins over the terminal background", func(t *testing.T) {
		keys := mocks.NewMemKeystore()
		require.NoError(t, keys.Put(repositories.SlotTheme, "light"))

		store := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: darkTerminal})
		assert.Equal(t, theme.ModeLight, store.Mode())
		assert.True(t, store.Explicit())
	})

	t.Run("a malformed persisted value falls back to detection", func(t *testing.T) {
		keys := mocks.NewMemKeystore()
		require.NoError(t, keys.Put(repositories.SlotTheme, "solarized"))

		store := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: darkTerminal})
		assert.Equal(t, theme.ModeDark, store.Mode())
		assert.False(t, store.Explicit())
	})
}

func TestToggle(t *testing.T) {
	t.Run("flips, persists, and survives a reload", func(t *testing.T) {
		keys := mocks.NewMemKeystore()

		store := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: darkTerminal})
		require.Equal(t, theme.ModeDark, store.Mode())

		assert.Equal(t, theme.ModeLight, store.Toggle())
		assert.True(t, store.Explicit())

		// A fresh store over the same keystore must ignore detection now.
		reloaded := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: darkTerminal})
		assert.Equal(t, theme.ModeLight, reloaded.Mode())
		assert.True(t, reloaded.Explicit())
	})

	t.Run("double toggle returns to the start but stays explicit", func(t *testing.T) {
		keys := mocks.NewMemKeystore()
		store := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: lightTerminal})

		store.Toggle()
		store.Toggle()
		assert.Equal(t, theme.ModeLight, store.Mode())
		assert.True(t, store.Explicit())
	})
}

func TestSystemChanged(t *testing.T) {
	t.Run("honored before an explicit choice", func(t *testing.T) {
		store := theme.NewStore(theme.StoreOpts{Keystore: mocks.NewMemKeystore(), DetectDark: lightTerminal})

		store.SystemChanged(true)
		assert.Equal(t, theme.ModeDark, store.Mode())

		store.SystemChanged(false)
		assert.Equal(t, theme.ModeLight, store.Mode())
	})

	t.Run("ignored after an explicit choice", func(t *testing.T) {
		store := theme.NewStore(theme.StoreOpts{Keystore: mocks.NewMemKeystore(), DetectDark: lightTerminal})

		store.Toggle() // now dark, explicit
		store.SystemChanged(false)
		assert.Equal(t, theme.ModeDark, store.Mode())
	})
}

func TestSet(t *testing.T) {
	keys := mocks.NewMemKeystore()
	store := theme.NewStore(theme.StoreOpts{Keystore: keys, DetectDark: lightTerminal})

	store.Set(theme.ModeDark)
	assert.Equal(t, theme.ModeDark, store.Mode())
	assert.True(t, store.Explicit())

	// Invalid modes are ignored.
	store.Set(theme.Mode("sepia"))
	assert.Equal(t, theme.ModeDark, store.Mode())
}
