package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"zentrade/internal/importer"
	"zentrade/internal/store"
)

// addImportExportCommands adds bulk import and export commands.
func addImportExportCommands(rootCmd *cobra.Command, app *App) {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import trades in bulk",
	}
	importCmd.AddCommand(newImportPasteCmd(app))
	importCmd.AddCommand(newImportCSVCmd(app))
	rootCmd.AddCommand(importCmd)

	rootCmd.AddCommand(newExportCmd(app))
}

func newImportPasteCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "paste [FILE]",
		Short: "Import trades pasted from a broker statement",
		Long: `Parse trades from free-form or tab-separated text, such as a block
copied out of a broker statement. Reads FILE, or stdin when omitted.

Recognized line shapes:
  AAPL	long	100	190.50	195.20	470	2026-03-02	2026-03-02
  AAPL long 100 @ 190.50 -> 195.20 pnl 470`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			text, err := readInput(args)
			if err != nil {
				output.Error("Failed to read input: %v", err)
				return err
			}

			trades, err := importer.ParsePaste(text)
			if err != nil {
				output.Error("Nothing parsed: %v", err)
				return err
			}

			if dryRun {
				if output.IsJSON() {
					return output.JSON(trades)
				}
				output.Info("Parsed %d trade(s) (dry run, nothing saved)", len(trades))
				renderTradeTable(output, trades)
				return nil
			}

			imp := importer.NewImporter(app.Store, app.Logger)
			saved, err := imp.Save(context.Background(), trades)
			if err != nil {
				output.Error("Import failed after %d trade(s): %v", saved, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": saved})
			}
			output.Success("Imported %d trade(s)", saved)
			output.Dim("Run 'zentrade progress refresh' to update XP")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and show, do not save")
	return cmd
}

func newImportCSVCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "csv FILE",
		Short: "Import trades from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			f, err := os.Open(args[0])
			if err != nil {
				output.Error("Failed to open %s: %v", args[0], err)
				return err
			}
			defer f.Close()

			trades, err := importer.ReadCSV(f)
			if err != nil {
				output.Error("CSV parse failed: %v", err)
				return err
			}

			if dryRun {
				if output.IsJSON() {
					return output.JSON(trades)
				}
				output.Info("Parsed %d trade(s) (dry run, nothing saved)", len(trades))
				renderTradeTable(output, trades)
				return nil
			}

			imp := importer.NewImporter(app.Store, app.Logger)
			saved, err := imp.Save(context.Background(), trades)
			if err != nil {
				output.Error("Import failed after %d trade(s): %v", saved, err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]int{"imported": saved})
			}
			output.Success("Imported %d trade(s) from %s", saved, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and show, do not save")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if !requireStore(app, output) {
				return nil
			}

			trades, err := app.Store.GetTrades(context.Background(), store.TradeFilter{})
			if err != nil {
				output.Error("Failed to load trades: %v", err)
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					output.Error("Failed to create %s: %v", out, err)
					return err
				}
				defer f.Close()
				w = f
			}

			if err := importer.WriteCSV(w, trades); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}
			if out != "" {
				output.Success("Exported %d trade(s) to %s", len(trades), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// readInput reads the optional file argument, falling back to stdin.
func readInput(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
