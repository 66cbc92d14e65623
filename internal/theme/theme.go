// Package theme implements the light/dark preference store.
//
// The theme follows the terminal's background until the user toggles
// explicitly; from then on the persisted choice wins for good. Same
// state-container shape as the session store, with a two-state machine
// {unset: follow system} -> {set: ignore system} that never transitions back.
package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/hardbound/stacks/internal/repositories"
	"github.com/hardbound/stacks/internal/shared"
)

// Mode is one of the two theme values.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Keystore is the persisted slot storage for the theme choice.
// Satisfied by [repositories.SlotRepository].
type Keystore interface {
	Get(name string) (value string, ok bool, err error)
	Put(name, value string) error
}

// Store exposes the current theme and a toggle, persisting across runs.
type Store struct {
	keys   Keystore
	logger *log.Logger

	mu       sync.Mutex
	mode     Mode
	explicit bool
}

// StoreOpts contains configuration options for creating a theme Store.
type StoreOpts struct {
	Keystore Keystore
	Logger   *log.Logger

	// DetectDark reports whether the terminal background is dark. Defaults
	// to lipgloss.HasDarkBackground; injectable for tests.
	DetectDark func() bool
}

// NewStore creates a theme store, sourcing the initial mode from the persisted
// choice when one exists and from the terminal background otherwise.
func NewStore(opts StoreOpts) *Store {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.DetectDark == nil {
		opts.DetectDark = lipgloss.HasDarkBackground
	}

	s := &Store{keys: opts.Keystore, logger: opts.Logger}

	if raw, ok, err := s.keys.Get(repositories.SlotTheme); err == nil && ok {
		if mode, valid := parseMode(raw); valid {
			s.mode = mode
			s.explicit = true
			return s
		}
		opts.Logger.Warn("persisted theme is malformed, falling back to terminal background", "value", raw)
	} else if err != nil {
		opts.Logger.Warn("failed to read persisted theme", "error", err)
	}

	s.mode = ModeLight
	if opts.DetectDark() {
		s.mode = ModeDark
	}
	return s
}

// Mode returns the current theme value.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Explicit reports whether the user has made a persisted choice.
func (s *Store) Explicit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.explicit
}

// Toggle flips between the two values, persists the result, and stops the
// store from following the terminal background.
func (s *Store) Toggle() Mode {
	s.mu.Lock()
	if s.mode == ModeDark {
		s.mode = ModeLight
	} else {
		s.mode = ModeDark
	}
	s.explicit = true
	mode := s.mode
	s.mu.Unlock()

	if err := s.keys.Put(repositories.SlotTheme, string(mode)); err != nil {
		s.logger.Warn("failed to persist theme", "error", err)
	}
	return mode
}

// Set installs a specific mode as an explicit, persisted choice. Used when
// the config file pins a theme.
func (s *Store) Set(mode Mode) {
	if _, valid := parseMode(string(mode)); !valid {
		return
	}

	s.mu.Lock()
	s.mode = mode
	s.explicit = true
	s.mu.Unlock()

	if err := s.keys.Put(repositories.SlotTheme, string(mode)); err != nil {
		s.logger.Warn("failed to persist theme", "error", err)
	}
}

// SystemChanged applies a terminal-background change, honored only while no
// explicit choice has been made.
func (s *Store) SystemChanged(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.explicit {
		return
	}
	s.mode = ModeLight
	if dark {
		s.mode = ModeDark
	}
}

func parseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModeLight:
		return ModeLight, true
	case ModeDark:
		return ModeDark, true
	default:
		return "", false
	}
}
