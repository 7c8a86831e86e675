package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long:  `The "list" command lists your habits with today's status and streaks.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := localStore(cmd.Context())
		if err != nil {
			return err
		}
		habits := st.Habits()
		if listJSON {
			return writeJSON(cmd.OutOrStdout(), habits)
		}
		if len(habits) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No habits yet. Add one with \"habits add <name>\".")
			return nil
		}

		today := st.Today()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTODAY\tSTREAK\tBEST\tREMINDER")
		for _, h := range habits {
			mark := " "
			if h.CompletedOn(today) {
				mark = "x"
			}
			fmt.Fprintf(tw, "%s\t%s\t[%s]\t%d\t%d\t%s\n", h.ID, h.Name, mark, h.Streak, h.BestStreak, h.ReminderTime)
		}
		return tw.Flush()
	},
}

var deletedCmd = &cobra.Command{
	Use:   "deleted",
	Short: "List recently deleted habits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := localStore(cmd.Context())
		if err != nil {
			return err
		}
		deleted := st.Deleted()
		if listJSON {
			return writeJSON(cmd.OutOrStdout(), deleted)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tDELETED AT\tBEST")
		for _, d := range deleted {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.ID, d.Name, d.DeletedAt, d.BestStreak)
		}
		return tw.Flush()
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	deletedCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	rootCmd.AddCommand(listCmd, deletedCmd)
}
