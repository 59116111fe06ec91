// Package presets registers the builtin scenarios. Hosts import it for the
// side effect:
//
//	import _ "github.com/talonworks/sortie/pkg/scenario/presets"
package presets

import (
	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/scenario"
)

func patrolIntercept() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "patrol-intercept",
		Description: "A three-ship patrol intercepts a bandit flight of equal size",
		Roster: []battle.RosterUnit{
			{
				Name:  "Kestrel-1",
				Craft: battle.CraftStats{Weapon: 11, Speed: 6, Agility: 5},
				Pilot: battle.PilotStats{Intelligence: 55, Endurance: 48},
			},
			{
				Name:  "Kestrel-2",
				Craft: battle.CraftStats{Weapon: 10, Speed: 5, Agility: 6},
				Pilot: battle.PilotStats{Intelligence: 48, Endurance: 52},
			},
			{
				Name:  "Kestrel-3",
				Craft: battle.CraftStats{Weapon: 9, Speed: 6, Agility: 4},
				Pilot: battle.PilotStats{Intelligence: 44, Endurance: 46},
			},
		},
		Mission: battle.Mission{
			Name:       "Border Patrol",
			EnemyCount: 3,
			EnemyStats: battle.Stats{Weapon: 9, Speed: 5, Agility: 5, Intelligence: 42, Endurance: 45},
			Rewards:    battle.RewardBlock{Credits: 1200, Salvage: 15},
		},
		Tactic: battle.TacticAggressive,
		Parameters: []scenario.Parameter{
			{Name: "enemy_count", Type: "integer", Description: "Number of bandits", Default: 3, Min: 2, Max: 6},
			{Name: "tactic", Type: "string", Description: "Engagement posture", Default: "aggressive", Options: []string{"aggressive", "defensive"}},
			{Name: "seed", Type: "integer", Description: "Outcome seed (0 for default)", Default: 0},
		},
	}
}

func outnumbered() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "outnumbered",
		Description: "Two escorts hold a defensive screen against a five-ship raid",
		Roster: []battle.RosterUnit{
			{
				Name:  "Bulwark-1",
				Craft: battle.CraftStats{Weapon: 13, Speed: 4, Agility: 5},
				Pilot: battle.PilotStats{Intelligence: 58, Endurance: 60},
			},
			{
				Name:  "Bulwark-2",
				Craft: battle.CraftStats{Weapon: 12, Speed: 4, Agility: 6},
				Pilot: battle.PilotStats{Intelligence: 52, Endurance: 58},
			},
		},
		Mission: battle.Mission{
			Name:       "Convoy Raid",
			EnemyCount: 5,
			EnemyStats: battle.Stats{Weapon: 10, Speed: 6, Agility: 5, Intelligence: 46, Endurance: 44},
			Rewards:    battle.RewardBlock{Credits: 2600, Salvage: 40},
		},
		Tactic: battle.TacticDefensive,
		Parameters: []scenario.Parameter{
			{Name: "enemy_count", Type: "integer", Description: "Number of raiders", Default: 5, Min: 4, Max: 8},
			{Name: "seed", Type: "integer", Description: "Outcome seed (0 for default)", Default: 0},
		},
	}
}

func flightSchool() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "flight-school",
		Description: "One trainee against a target drone, respawning for endless practice",
		Roster: []battle.RosterUnit{
			{
				Name:  "Cadet-1",
				Craft: battle.CraftStats{Weapon: 10, Speed: 5, Agility: 5},
				Pilot: battle.PilotStats{Intelligence: 50, Endurance: 50},
			},
		},
		Mission: battle.Mission{
			Name:       "Gunnery Practice",
			EnemyCount: 1,
			EnemyStats: battle.Stats{Weapon: 6, Speed: 4, Agility: 4, Intelligence: 30, Endurance: 35},
			Rewards:    battle.RewardBlock{Credits: 300, Salvage: 2},
		},
		Tactic:  battle.TacticAggressive,
		Respawn: true,
		Parameters: []scenario.Parameter{
			{Name: "respawn", Type: "boolean", Description: "Respawn the drone after each kill", Default: true},
			{Name: "seed", Type: "integer", Description: "Outcome seed (0 for default)", Default: 0},
		},
	}
}

// init registers the builtin presets
func init() {
	for name, factory := range map[string]func() *scenario.Scenario{
		"patrol-intercept": patrolIntercept,
		"outnumbered":      outnumbered,
		"flight-school":    flightSchool,
	} {
		if err := scenario.DefaultRegistry.Register(name, factory); err != nil {
			logger.Errorf("Failed to register scenario: %v", err)
		}
	}
}
