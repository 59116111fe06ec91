package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/logger"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a battle outcome without simulating",
	Long: `Generate the scripted outcome for a scenario and print its timeline.
The saved JSON can be replayed later with run --outcome.`,
	RunE: previewOutcome,
}

func init() {
	previewCmd.Flags().StringP("scenario", "s", "", "scenario name to preview")
	previewCmd.Flags().StringP("file", "f", "", "scenario file (YAML)")
	previewCmd.Flags().Int64("seed", 0, "battle seed (overrides the scenario)")
	previewCmd.Flags().String("tactic", "", "tactic: aggressive or defensive (overrides the scenario)")
	previewCmd.Flags().String("tuning", "", "tuning override file")
	previewCmd.Flags().String("save", "", "write the outcome JSON to a file")
}

func previewOutcome(cmd *cobra.Command, _ []string) error {
	sc, err := resolveScenario(cmd)
	if err != nil {
		return fmt.Errorf("failed to select scenario: %w", err)
	}

	if err := promptParameters(sc); err != nil {
		return err
	}
	if err := applyOverrides(cmd, sc); err != nil {
		return err
	}

	tuning, err := resolveTuning(cmd, sc)
	if err != nil {
		return err
	}

	outcome, err := battle.GenerateOutcome(tuning, sc.Input())
	if err != nil {
		return fmt.Errorf("failed to generate outcome: %w", err)
	}

	printOutcome(sc.Name, outcome)

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outcome: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write outcome: %w", err)
		}
		logger.Successf("Outcome saved to: %s", path)
	}

	return nil
}

// printOutcome renders the scripted timeline and the decided results.
func printOutcome(name string, outcome *battle.Outcome) {
	logger.Section(fmt.Sprintf("Outcome Preview: %s", name))

	res := outcome.Results
	result := "Defeat"
	if res.Victory {
		result = "Victory"
	}
	logger.KeyValue("Result", result)
	logger.KeyValue("Duration", fmt.Sprintf("%.0fs", res.DurationSeconds))
	logger.KeyValue("Rewards", fmt.Sprintf("%d credits, %d salvage", res.Credits, res.Salvage))
	logger.KeyValue("Allied", fmt.Sprintf("%d survive, %d destroyed, %d escape",
		res.SurvivingAllied, res.DestroyedAllied, res.EscapedAllied))
	logger.KeyValue("Enemy", fmt.Sprintf("%d survive, %d destroyed, %d escape",
		res.SurvivingEnemy, res.DestroyedEnemy, res.EscapedEnemy))

	if len(outcome.Script.Events) == 0 {
		fmt.Println("\nNo combat events scripted")
		return
	}

	fmt.Println()
	table := logger.NewTable("T+", "TYPE", "ATTACKER", "TARGET", "DAMAGE")
	for _, ev := range outcome.Script.Events {
		target, damage := string(ev.Target), fmt.Sprintf("%.0f", ev.Damage)
		if ev.Type == battle.EventEscape {
			target, damage = "-", "-"
		}
		if ev.Type == battle.EventDestroy {
			damage = "-"
		}
		table.AddRow(
			fmt.Sprintf("%.1fs", ev.Timestamp),
			string(ev.Type),
			string(ev.Attacker),
			target,
			damage,
		)
	}
	table.Print()
}
