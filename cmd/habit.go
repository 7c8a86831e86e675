package cmd

import (
	"fmt"

	"github.com/brk3/habitstate/pkg/habit"
	"github.com/spf13/cobra"
)

var (
	addInput habit.Input

	editName        string
	editDescription string
	editCategory    string
	editColor       string
	editRemind      string
	editNoRemind    bool

	doneDate string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := localStore(cmd.Context())
		if err != nil {
			return err
		}
		in := addInput
		in.Name = args[0]
		h, err := st.AddHabit(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", h.Name, h.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a habit's details",
	Long: `The "edit" command changes only the fields whose flags are given.
Completion history and streaks are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("remind") && editNoRemind {
			return fmt.Errorf("--remind and --no-remind are mutually exclusive")
		}
		var u habit.Update
		flags := cmd.Flags()
		if flags.Changed("name") {
			u.Name = &editName
		}
		if flags.Changed("description") {
			u.Description = &editDescription
		}
		if flags.Changed("category") {
			u.Category = &editCategory
		}
		if flags.Changed("color") {
			u.Color = &editColor
		}
		if flags.Changed("remind") {
			u.ReminderTime = &editRemind
		}
		if editNoRemind {
			none := ""
			u.ReminderTime = &none
		}

		st, err := localStore(cmd.Context())
		if err != nil {
			return err
		}
		h, found, err := st.EditHabit(cmd.Context(), args[0], u)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no habit with id %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", h.Name, h.ID)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a habit",
	Long: `The "rm" command removes a habit. The ten most recently deleted habits
are kept and can be listed with "habits deleted".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := localStore(cmd.Context())
		if err != nil {
			return err
		}
		found, err := st.DeleteHabit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no habit with id %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a habit's completion for a day",
	Long: `The "done" command marks a habit completed for today, or for the day
given with --date. Running it again for the same day clears the mark.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := localStore(cmd.Context())
		if err != nil {
			return err
		}
		date := doneDate
		if date == "" {
			date = st.Today()
		}
		h, found, err := st.ToggleCompletion(cmd.Context(), args[0], date)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no habit with id %q", args[0])
		}
		verb := "Cleared"
		if h.CompletedOn(date) {
			verb = "Completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s (streak %d, best %d)\n", verb, h.Name, date, h.Streak, h.BestStreak)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addInput.Description, "description", "", "habit description")
	addCmd.Flags().StringVar(&addInput.Category, "category", "", "habit category")
	addCmd.Flags().StringVar(&addInput.Color, "color", "", "display color")
	addCmd.Flags().StringVar(&addInput.ReminderTime, "remind", "", "daily reminder time, HH:MM")

	editCmd.Flags().StringVar(&editName, "name", "", "new name")
	editCmd.Flags().StringVar(&editDescription, "description", "", "new description")
	editCmd.Flags().StringVar(&editCategory, "category", "", "new category")
	editCmd.Flags().StringVar(&editColor, "color", "", "new display color")
	editCmd.Flags().StringVar(&editRemind, "remind", "", "new daily reminder time, HH:MM")
	editCmd.Flags().BoolVar(&editNoRemind, "no-remind", false, "remove the reminder")

	doneCmd.Flags().StringVar(&doneDate, "date", "", "day to toggle, YYYY-MM-DD (default today)")

	rootCmd.AddCommand(addCmd, editCmd, rmCmd, doneCmd)
}
