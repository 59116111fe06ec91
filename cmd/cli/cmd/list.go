package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/scenario"
	"github.com/talonworks/sortie/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenarios",
	Long:  `List builtin scenario presets and scenario files with their descriptions`,
	RunE:  listScenarios,
}

func listScenarios(cmd *cobra.Command, args []string) error {
	presets := scenario.DefaultRegistry.List()

	infos, err := utils.DiscoverScenarios(scenariosDir)
	if err != nil {
		return fmt.Errorf("failed to discover scenarios: %w", err)
	}

	if len(presets) == 0 && len(infos) == 0 {
		fmt.Println("No scenarios found")
		return nil
	}

	// Create tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSOURCE\tUNITS\tENEMIES\tTACTIC\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t------\t-----\t-------\t------\t-----------")

	seen := make(map[string]bool, len(presets))
	for _, name := range presets {
		sc, err := scenario.DefaultRegistry.Get(name)
		if err != nil {
			continue
		}
		seen[name] = true
		printScenarioRow(w, sc, "builtin")
	}

	for _, info := range infos {
		// Presets shadow files with the same name, matching run's lookup order.
		if seen[info.Scenario.Name] {
			continue
		}
		sc := info.Scenario
		printScenarioRow(w, &sc, info.Path)
	}

	return w.Flush()
}

func printScenarioRow(w *tabwriter.Writer, sc *scenario.Scenario, source string) {
	tactic := sc.Tactic
	if tactic == "" {
		tactic = battle.TacticAggressive
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
		sc.Name,
		source,
		len(sc.Roster),
		sc.Mission.EnemyCount,
		tactic,
		sc.Description,
	)
}
