package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/config"
	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/scenario"
	"github.com/talonworks/sortie/pkg/utils"
)

// resolveScenario picks the scenario to play: an explicit file, a named
// preset or discovered file, or an interactive selection.
func resolveScenario(cmd *cobra.Command) (*scenario.Scenario, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return scenario.Load(file)
	}

	infos, err := utils.DiscoverScenarios(scenariosDir)
	if err != nil {
		logger.Warnf("Scenario discovery failed: %v", err)
	}

	if name, _ := cmd.Flags().GetString("scenario"); name != "" {
		if sc, err := scenario.DefaultRegistry.Get(name); err == nil {
			return sc, nil
		}
		for _, info := range infos {
			if info.Scenario.Name == name {
				sc := info.Scenario
				return &sc, nil
			}
		}
		return nil, fmt.Errorf("scenario %s not found", name)
	}

	return selectScenario(infos)
}

// selectScenario prompts for a scenario across presets and discovered files.
func selectScenario(infos []utils.ScenarioInfo) (*scenario.Scenario, error) {
	options := make([]string, 0, len(infos))
	descriptions := make(map[string]string)
	fromFile := make(map[string]utils.ScenarioInfo)

	for _, name := range scenario.DefaultRegistry.List() {
		sc, err := scenario.DefaultRegistry.Get(name)
		if err != nil {
			continue
		}
		options = append(options, name)
		descriptions[name] = sc.Description
	}
	for _, info := range infos {
		name := info.Scenario.Name
		if _, taken := descriptions[name]; taken {
			continue
		}
		options = append(options, name)
		descriptions[name] = info.Scenario.Description
		fromFile[name] = info
	}

	if len(options) == 0 {
		return nil, fmt.Errorf("no scenarios found")
	}

	var selected string
	prompt := &survey.Select{
		Message: "Select scenario:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}

	if info, ok := fromFile[selected]; ok {
		sc := info.Scenario
		return &sc, nil
	}
	return scenario.DefaultRegistry.Get(selected)
}

// promptParameters collects and applies the scenario's declared parameters.
func promptParameters(sc *scenario.Scenario) error {
	if len(sc.Parameters) == 0 {
		return nil
	}

	values, err := utils.PromptForParameters(sc.Parameters)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}
	if err := sc.ApplyParameters(values); err != nil {
		return fmt.Errorf("failed to apply parameters: %w", err)
	}
	return nil
}

// applyOverrides folds explicitly set command flags into the scenario.
func applyOverrides(cmd *cobra.Command, sc *scenario.Scenario) error {
	if cmd.Flags().Changed("seed") {
		sc.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("tactic") {
		tactic, _ := cmd.Flags().GetString("tactic")
		sc.Tactic = battle.Tactic(tactic)
	}
	if cmd.Flags().Changed("respawn") {
		sc.Respawn, _ = cmd.Flags().GetBool("respawn")
	}
	if cmd.Flags().Changed("debug") {
		sc.Debug, _ = cmd.Flags().GetBool("debug")
	}
	return sc.Validate()
}

// resolveTuning returns the engine tuning for this invocation: an override
// file from the flag or config takes precedence over the scenario's own
// tuning block; nil falls back to engine defaults.
func resolveTuning(cmd *cobra.Command, sc *scenario.Scenario) (*battle.Tuning, error) {
	path, _ := cmd.Flags().GetString("tuning")
	if path == "" {
		path = viper.GetString("tuning")
	}
	if path == "" {
		if userPath, exists := config.DefaultTuningPath(); exists {
			path = userPath
		}
	}
	if path != "" {
		return config.LoadTuning(path)
	}
	return sc.Tuning, nil
}

// loadOutcome reads a previously saved outcome JSON for replay.
func loadOutcome(path string) (*battle.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome file: %w", err)
	}

	var out battle.Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse outcome file: %w", err)
	}
	return &out, nil
}
