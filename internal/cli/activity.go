package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zentrade/internal/models"
	"zentrade/internal/store"
)

// addActivityCommands adds learning-activity commands.
func addActivityCommands(rootCmd *cobra.Command, app *App) {
	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Log learning activities",
		Long: `Log non-trade learning activities. Each type carries a fixed XP reward:
backtest 40, reengineer 25, postTradeReview 20.`,
	}

	activityCmd.AddCommand(newActivityLogCmd(app))
	activityCmd.AddCommand(newActivityListCmd(app))
	activityCmd.AddCommand(newActivityDeleteCmd(app))

	rootCmd.AddCommand(activityCmd)
}

func newActivityLogCmd(app *App) *cobra.Command {
	var (
		date  string
		notes string
	)

	cmd := &cobra.Command{
		Use:   "log TYPE",
		Short: "Log a learning activity",
		Example: `  zentrade activity log backtest --notes "ORB on 3 months of SPY"
  zentrade activity log postTradeReview --notes "reviewed Friday's overtrades"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			when := time.Now()
			if date != "" {
				d, err := models.ParseDateKey(date)
				if err != nil {
					output.Error("Invalid date %q (want YYYY-MM-DD)", date)
					return err
				}
				when = d
			}

			activityType := models.ActivityType(args[0])
			activity, err := app.Journal.LogActivity(context.Background(), activityType, when, notes)
			if err != nil {
				output.Error("Failed to log activity: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(activity)
			}
			output.Success("Logged %s activity %s (+%d XP on refresh)", activity.Type, activity.ID, activity.XPReward())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "activity date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&notes, "notes", "", "what you did and learned (required)")
	cmd.MarkFlagRequired("notes")

	return cmd
}

func newActivityListCmd(app *App) *cobra.Command {
	var (
		activityType string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			filter := store.ActivityFilter{
				Type:  models.ActivityType(activityType),
				Limit: limit,
			}
			activities, err := app.Store.GetActivities(context.Background(), filter)
			if err != nil {
				output.Error("Failed to load activities: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(activities)
			}
			if len(activities) == 0 {
				output.Info("No activities found")
				return nil
			}

			table := NewTable(output, "ID", "DATE", "TYPE", "XP", "NOTES")
			for i := range activities {
				a := &activities[i]
				table.AddRow(
					TruncateString(a.ID, 10),
					models.DateKey(a.Date),
					string(a.Type),
					FormatQuantity(float64(a.XPReward())),
					TruncateString(strings.ReplaceAll(a.Notes, "\n", " "), 50),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&activityType, "type", "", "filter by type: backtest, reengineer or postTradeReview")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of activities")

	return cmd
}

func newActivityDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ACTIVITY_ID",
		Short: "Delete a logged activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			if err := app.Store.DeleteActivity(context.Background(), args[0]); err != nil {
				output.Error("Failed to delete activity: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"id": args[0], "deleted": true})
			}
			output.Success("Deleted activity %s", args[0])
			return nil
		},
	}
	return cmd
}
