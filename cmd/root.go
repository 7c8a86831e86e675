package cmd

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brk3/habitstate/internal/app"
	"github.com/brk3/habitstate/internal/config"
	"github.com/brk3/habitstate/internal/habitstore"
	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/internal/session"

	"github.com/spf13/cobra"
)

var (
	cfg  *config.Config
	host *app.Host
)

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Track daily habits and their streaks",
	Long: `
	Habits keeps a list of daily habits, records which days each one was done
	and derives the current and best streak from that record. Habits can carry
	a daily reminder, delivered by email through "habits remind".`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnFinalize(closeHost)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// keep one-shot command output readable unless asked otherwise
	level := cfg.Log.Level
	if cmd.Name() != "serve" {
		level = cmp.Or(level, "warn")
	}
	return logger.Setup(logger.Options{Level: level, Format: cfg.Log.Format, File: cfg.Log.File})
}

// closeHost runs after every command, including failed ones.
func closeHost() {
	if host == nil {
		return
	}
	if err := host.Close(); err != nil {
		logger.Error("Failed to close storage", "error", err)
	}
	host = nil
}

// openHost opens the configured backend once per command run.
func openHost() (*app.Host, error) {
	if host != nil {
		return host, nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	backend, err := app.OpenBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}
	host = app.NewHost(backend, app.Options{
		Now:              func() time.Time { return time.Now().In(loc) },
		RemindersEnabled: cfg.Reminders.Enabled,
	})
	return host, nil
}

// localStore returns the store of the configured profile. The local user
// always holds a session.
func localStore(ctx context.Context) (*habitstore.Store, error) {
	h, err := openHost()
	if err != nil {
		return nil, err
	}
	return h.Store(ctx, session.Static(true), cfg.Profile)
}
