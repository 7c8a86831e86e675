package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/brk3/habitstate/internal/reminder"
	"github.com/brk3/habitstate/internal/reminder/resend"

	"github.com/spf13/cobra"
)

var remindDryRun bool

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send the daily reminders that came due since the last run",
	Long: `The "remind" command is meant to run from cron. Each run emails the
reminders whose time of day passed since the previous successful run.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if remindDryRun {
			return nil
		}
		if cfg.Reminders.ResendAPIKey == "" {
			return fmt.Errorf("HABITS_RESEND_API_KEY environment variable is not set")
		}
		if cfg.Reminders.To == "" {
			return fmt.Errorf("HABITS_NOTIFY_EMAIL environment variable is not set")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHost()
		if err != nil {
			return err
		}

		var n reminder.Notifier = &resend.Notifier{
			ApiKey: cfg.Reminders.ResendAPIKey,
			From:   cfg.Reminders.From,
			Email:  cfg.Reminders.To,
		}
		if remindDryRun {
			n = printNotifier{w: cmd.OutOrStdout()}
		}

		sent, err := reminder.Dispatch(cmd.Context(), h.Reminders(cfg.Profile), n, h.Now(), cfg.Reminders.Window)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d reminder(s)\n", sent)
		return nil
	},
}

// printNotifier writes reminders to w instead of sending them.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(_ context.Context, habitNames []string) error {
	_, err := fmt.Fprintf(p.w, "Time to work on: %s\n", strings.Join(habitNames, ", "))
	return err
}

func init() {
	remindCmd.Flags().BoolVar(&remindDryRun, "dry-run", false, "print due reminders instead of emailing them")
	rootCmd.AddCommand(remindCmd)
}
