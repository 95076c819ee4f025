package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniloc96/team-roles/internal/models"
	"github.com/daniloc96/team-roles/internal/rotate"
	"github.com/daniloc96/team-roles/internal/schedule"
)

var (
	flagCount     int
	flagBulkDate  string
	flagMember    string
	flagDeleteRef string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage the role events in the calendar",
}

var createBulkCmd = &cobra.Command{
	Use:   "create-bulk <role>",
	Short: "Create a year of role events",
	Long: `Create role events continuing the rotation order.

The first event starts on --date and goes to the member after --member.
Without --date the series starts after the last event in the calendar, or on
the role's default date when the calendar is empty. Without --member it
continues from the holder of the last event, or from the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, models.ActionCreateBulk, args, func(req *rotate.Request) error {
			opts, err := bulkOptions(flagCount, flagBulkDate, flagMember)
			if err != nil {
				return err
			}
			req.Bulk = opts
			return nil
		})
	},
}

var createNextCmd = &cobra.Command{
	Use:   "create-next <role>",
	Short: "Append one event after the last event of the role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, models.ActionCreateNext, args, nil)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <role>",
	Short: "Delete the role events starting after a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, models.ActionDelete, args, func(req *rotate.Request) error {
			if flagDeleteRef == "" {
				return nil
			}
			ref, err := schedule.ParseDate(flagDeleteRef)
			if err != nil {
				return err
			}
			req.Reference = ref
			return nil
		})
	},
}

func bulkOptions(count int, date, member string) (rotate.BulkOptions, error) {
	if count < 0 {
		return rotate.BulkOptions{}, fmt.Errorf("--count must not be negative")
	}
	opts := rotate.BulkOptions{Count: count, Member: member}
	if date != "" {
		ref, err := schedule.ParseDate(date)
		if err != nil {
			return rotate.BulkOptions{}, err
		}
		opts.Reference = ref
	}
	return opts, nil
}

func init() {
	createBulkCmd.Flags().IntVarP(&flagCount, "count", "n", 0, "Number of events to create (default: one year)")
	createBulkCmd.Flags().StringVarP(&flagBulkDate, "date", "d", "", "Start of the first event, YYYY-MM-DD")
	createBulkCmd.Flags().StringVarP(&flagMember, "member", "m", "", "Member the series continues from")
	deleteCmd.Flags().StringVarP(&flagDeleteRef, "date", "d", "", "Delete events starting after this date, YYYY-MM-DD (default: today)")

	eventsCmd.AddCommand(createBulkCmd, createNextCmd, deleteCmd)
	rootCmd.AddCommand(eventsCmd)
}
