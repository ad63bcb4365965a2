package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"zentrade/internal/models"
	"zentrade/internal/xp"
)

// addProgressCommands adds XP and leveling commands.
func addProgressCommands(rootCmd *cobra.Command, app *App) {
	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Show XP, level, streak and titles",
		Long: `Show the gamified journaling progress: total XP, current level,
journaling streak and unlocked titles. The progress document is derived
wholesale from the trade and activity history; 'progress refresh' replays
the history through the XP engine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			progress, err := app.Store.GetProgress(context.Background())
			if err != nil {
				output.Error("Failed to load progress: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(progress)
			}
			renderProgress(output, progress)
			return nil
		},
	}

	progressCmd.AddCommand(newProgressRefreshCmd(app))
	progressCmd.AddCommand(newProgressInitCmd(app))
	progressCmd.AddCommand(newProgressLogCmd(app))
	progressCmd.AddCommand(newProgressTitlesCmd(app))

	rootCmd.AddCommand(progressCmd)
}

func renderProgress(output *Output, progress models.UserProgress) {
	output.Bold("Journal Progress")
	output.Println()

	earned := xp.ForLevel(progress.Level) - progress.XPToNextLevel
	output.Printf("  Level:   %d  (%d XP, %d to next level)\n", progress.Level, progress.XP, progress.XPToNextLevel)
	output.Printf("  %s\n", levelBar(output, earned, xp.ForLevel(progress.Level)))
	output.Printf("  Streak:  %d day(s)  (longest %d)\n", progress.Streak, progress.LongestStreak)
	if progress.LastActivity != "" {
		output.Printf("  Last Active: %s\n", progress.LastActivity)
	}
	output.Println()

	if len(progress.TitlesUnlocked) > 0 {
		output.Bold("Titles")
		for _, title := range progress.TitlesUnlocked {
			output.Printf("  %s %s\n", output.Yellow("*"), title)
		}
		output.Println()
	}
}

// levelBar renders the XP progress within the current level bracket.
func levelBar(output *Output, earned, needed int) string {
	const width = 30
	if needed <= 0 {
		needed = 1
	}
	filled := earned * width / needed
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
	return "[" + output.Green(bar[:filled]) + bar[filled:] + "]"
}

func newProgressRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Recompute progress from the full history",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			progress, err := app.Journal.RefreshProgress(context.Background())
			if err != nil {
				output.Error("Failed to refresh progress: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(progress)
			}
			output.Success("Progress refreshed")
			output.Println()
			renderProgress(output, progress)
			return nil
		},
	}
}

func newProgressInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the progress document",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			progress, err := app.Store.InitProgress(context.Background())
			if err != nil {
				output.Error("Failed to initialize progress: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(progress)
			}
			output.Success("Progress initialized at level %d", progress.Level)
			return nil
		},
	}
}

func newProgressLogCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the daily XP ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			progress, err := app.Store.GetProgress(context.Background())
			if err != nil {
				output.Error("Failed to load progress: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(progress.DailyXPLog)
			}
			if len(progress.DailyXPLog) == 0 {
				output.Info("No XP earned yet")
				return nil
			}

			days := make([]string, 0, len(progress.DailyXPLog))
			for day := range progress.DailyXPLog {
				days = append(days, day)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(days)))
			if limit > 0 && len(days) > limit {
				days = days[:limit]
			}

			table := NewTable(output, "DATE", "XP")
			for _, day := range days {
				table.AddRow(day, FormatQuantity(float64(progress.DailyXPLog[day])))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "maximum number of days (newest first)")
	return cmd
}

func newProgressTitlesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "Show all titles and their unlock state",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			progress, err := app.Store.GetProgress(context.Background())
			if err != nil {
				output.Error("Failed to load progress: %v", err)
				return err
			}

			type titleState struct {
				Name     string `json:"name"`
				Unlocked bool   `json:"unlocked"`
			}
			states := make([]titleState, 0, len(xp.Titles))
			for _, t := range xp.Titles {
				states = append(states, titleState{Name: t.Name, Unlocked: progress.HasTitle(t.Name)})
			}

			if output.IsJSON() {
				return output.JSON(states)
			}
			output.Bold("Titles")
			for _, s := range states {
				marker := output.Green("[x]")
				if !s.Unlocked {
					marker = output.ColoredString(ColorDim, "[ ]")
				}
				output.Printf("  %s %s\n", marker, s.Name)
			}
			return nil
		},
	}
}
