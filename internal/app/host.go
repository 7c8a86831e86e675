// Package app wires the habit store to its collaborators for a host process
// and gates store initialization on the session signal.
package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brk3/habitstate/internal/config"
	"github.com/brk3/habitstate/internal/habitstore"
	"github.com/brk3/habitstate/internal/kv"
	"github.com/brk3/habitstate/internal/kv/bolt"
	"github.com/brk3/habitstate/internal/kv/sqlite"
	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/internal/persist"
	"github.com/brk3/habitstate/internal/reminder"
	"github.com/brk3/habitstate/internal/session"
)

// ErrNoSession is returned when the store is requested without an active
// user session.
var ErrNoSession = errors.New("no active session")

// Backend is a durable store partitioned by profile.
type Backend interface {
	Profile(name string) kv.Store
	Close() error
}

// OpenBackend opens the storage driver named in cfg.
func OpenBackend(cfg config.Storage) (Backend, error) {
	switch cfg.Driver {
	case "", "bolt":
		s, err := bolt.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open bolt store %s: %w", cfg.Path, err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.Path, err)
		}
		return s, nil
	case "memory":
		return kv.NewMemoryProfiles(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

type Options struct {
	// Now returns the current time in the zone that defines "today".
	Now              func() time.Time
	RemindersEnabled bool
}

// Host owns one running habit store per profile.
type Host struct {
	backend Backend
	opts    Options

	mu     sync.Mutex
	stores map[string]*habitstore.Store
}

func NewHost(b Backend, opts Options) *Host {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Host{backend: b, opts: opts, stores: map[string]*habitstore.Store{}}
}

// Store returns the running store for profile, loading it on first use.
func (h *Host) Store(ctx context.Context, sig session.Signal, profile string) (*habitstore.Store, error) {
	if sig == nil || !sig.IsAuthenticated() {
		return nil, ErrNoSession
	}
	profile = cmp.Or(profile, "default")

	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.stores[profile]; ok {
		return s, nil
	}

	gw := persist.New(h.backend.Profile(profile), h.opts.Now)
	rc := reminder.NewCoordinator(h.Reminders(profile), h.opts.Now().Location())
	s := habitstore.Open(ctx, gw, rc, habitstore.Options{Now: h.opts.Now})
	h.stores[profile] = s

	logger.With("profile", profile).InfoContext(ctx, "Habit store ready", "habits", len(s.Habits()))
	return s, nil
}

// Reminders returns the daily reminder scheduler of profile. Its entries live
// apart from the habit keys.
func (h *Host) Reminders(profile string) *reminder.Daily {
	profile = cmp.Or(profile, "default")
	return reminder.NewDaily(h.backend.Profile(profile+"/reminders"), h.opts.RemindersEnabled)
}

func (h *Host) Now() time.Time {
	return h.opts.Now()
}

func (h *Host) Close() error {
	return h.backend.Close()
}
