package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "zentrade/internal/errors"
	"zentrade/internal/models"
)

// addCheckInCommands adds the daily rule-adherence check-in commands.
func addCheckInCommands(rootCmd *cobra.Command, app *App) {
	var (
		followed []string
		broken   []string
		honest   bool
		all      bool
		none     bool
	)

	checkinCmd := &cobra.Command{
		Use:   "checkin",
		Short: "Submit the daily rule check-in",
		Long: `Score today's adherence to your configured trading rules. Every rule
must be marked followed or broken, by its number in 'zentrade checkin rules'
or its full text. Following every rule earns the most XP and extends the
discipline streak; an honest report of a bad day still earns something.

One check-in per day; it cannot be edited afterwards.`,
		Example: `  zentrade checkin --all --honest
  zentrade checkin --followed 1,2,4 --broken 3 --honest
  zentrade checkin --none --honest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			ruleList := app.Journal.Rules()
			if all {
				followed = append([]string{}, ruleList...)
				broken = nil
			}
			if none {
				broken = append([]string{}, ruleList...)
				followed = nil
			}

			followedRules, err := resolveRules(ruleList, followed)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			brokenRules, err := resolveRules(ruleList, broken)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			honesty := honest
			result, err := app.Journal.SubmitCheckIn(context.Background(), followedRules, brokenRules, &honesty)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrCheckInExists) {
					output.Warning("Already checked in today")
					return err
				}
				output.Error("Check-in failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			renderCheckInResult(output, result.CheckIn, result.Progress)
			return nil
		},
	}

	checkinCmd.Flags().StringSliceVar(&followed, "followed", nil, "rules followed, by number or text")
	checkinCmd.Flags().StringSliceVar(&broken, "broken", nil, "rules broken, by number or text")
	checkinCmd.Flags().BoolVar(&honest, "honest", false, "confirm the report is honest")
	checkinCmd.Flags().BoolVar(&all, "all", false, "mark every rule followed")
	checkinCmd.Flags().BoolVar(&none, "none", false, "mark every rule broken")

	checkinCmd.AddCommand(newCheckInRulesCmd(app))
	checkinCmd.AddCommand(newCheckInHistoryCmd(app))

	rootCmd.AddCommand(checkinCmd)
}

// resolveRules maps 1-based rule numbers to the configured rule text;
// entries that are not numbers pass through as-is.
func resolveRules(ruleList, entries []string) ([]string, error) {
	resolved := make([]string, 0, len(entries))
	for _, entry := range entries {
		n, err := strconv.Atoi(entry)
		if err != nil {
			resolved = append(resolved, entry)
			continue
		}
		if n < 1 || n > len(ruleList) {
			return nil, apperrors.NewValidationError("rule", entry, "rule number out of range")
		}
		resolved = append(resolved, ruleList[n-1])
	}
	return resolved, nil
}

func renderCheckInResult(output *Output, checkIn models.RuleCheckIn, progress models.UserProgress) {
	switch {
	case len(checkIn.RulesBroken) == 0:
		output.Success("Perfect day: all %d rules followed (+%d XP)", len(checkIn.RulesFollowed), checkIn.XPAwarded)
	case checkIn.XPAwarded > 0:
		output.Info("Checked in: %d followed, %d broken (+%d XP)", len(checkIn.RulesFollowed), len(checkIn.RulesBroken), checkIn.XPAwarded)
	default:
		output.Warning("Checked in: %d followed, %d broken (no XP)", len(checkIn.RulesFollowed), len(checkIn.RulesBroken))
	}
	output.Printf("  Discipline streak: %d day(s)\n", progress.Streak)
	if len(checkIn.RulesBroken) > 0 {
		output.Println()
		output.Bold("Broken today")
		for _, r := range checkIn.RulesBroken {
			output.Printf("  %s %s\n", output.Red("x"), r)
		}
	}
}

func newCheckInRulesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the configured trading rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ruleList := app.Config.Journal.Rules

			if output.IsJSON() {
				return output.JSON(ruleList)
			}
			if len(ruleList) == 0 {
				output.Warning("No rules configured. Add rules under [journal] in your config file.")
				return nil
			}
			output.Bold("Trading Rules")
			for i, r := range ruleList {
				output.Printf("  %d. %s\n", i+1, r)
			}
			return nil
		},
	}
}

func newCheckInHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past check-ins",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			checkIns, err := app.Store.GetCheckIns(context.Background(), limit)
			if err != nil {
				output.Error("Failed to load check-ins: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(checkIns)
			}
			if len(checkIns) == 0 {
				output.Info("No check-ins yet")
				return nil
			}

			table := NewTable(output, "DATE", "FOLLOWED", "BROKEN", "HONEST", "XP")
			for i := range checkIns {
				c := &checkIns[i]
				honest := "no"
				if c.HonestyConfirmed {
					honest = "yes"
				}
				table.AddRow(
					c.Date,
					FormatQuantity(float64(len(c.RulesFollowed))),
					FormatQuantity(float64(len(c.RulesBroken))),
					honest,
					FormatQuantity(float64(c.XPAwarded)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "maximum number of check-ins (newest first)")
	return cmd
}
