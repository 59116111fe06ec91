package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/report"
	"github.com/talonworks/sortie/pkg/scenario"
	"github.com/talonworks/sortie/pkg/store"

	// Import presets to register them
	_ "github.com/talonworks/sortie/pkg/scenario/presets"
)

// tickSeconds is the simulation step used by every advance loop.
const tickSeconds = 1.0 / 60

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a battle",
	Long:  `Run a scenario to completion and print the debrief`,
	RunE:  runBattle,
}

func init() {
	runCmd.Flags().StringP("scenario", "s", "", "scenario name to run")
	runCmd.Flags().StringP("file", "f", "", "scenario file (YAML)")
	runCmd.Flags().Int64("seed", 0, "battle seed (overrides the scenario)")
	runCmd.Flags().String("tactic", "", "tactic: aggressive or defensive (overrides the scenario)")
	runCmd.Flags().Bool("respawn", false, "respawn wrecked units after a delay")
	runCmd.Flags().Bool("debug", false, "echo battle events as they execute")
	runCmd.Flags().Bool("real-time", false, "advance in wall-clock time instead of fast-forwarding")
	runCmd.Flags().Float64("duration-cap", 240, "safety cap in battle seconds")
	runCmd.Flags().String("outcome", "", "previously saved outcome JSON to replay")
	runCmd.Flags().String("tuning", "", "tuning override file")
	runCmd.Flags().String("save-debrief", "", "write the debrief to a file (.json or .md)")
	runCmd.Flags().Bool("archive", false, "archive the debrief in the local store")
	runCmd.Flags().String("db", "", "archive database path (default ~/.sortie/debriefs.db)")
}

func runBattle(cmd *cobra.Command, _ []string) error {
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

	in := sc.Input()
	if outcomePath, _ := cmd.Flags().GetString("outcome"); outcomePath != "" {
		precomputed, err := loadOutcome(outcomePath)
		if err != nil {
			return err
		}
		in.Precomputed = precomputed
		logger.Infof("Replaying saved outcome from %s", outcomePath)
	}

	realTime, _ := cmd.Flags().GetBool("real-time")
	log := report.NewBattleLog(sc.Debug || realTime)
	in.Observer = log

	b, err := battle.New(tuning, in)
	if err != nil {
		return fmt.Errorf("failed to build battle: %w", err)
	}

	logger.Section(fmt.Sprintf("Engaging: %s", sc.Name))
	logger.KeyValue("Roster", fmt.Sprintf("%d units", len(sc.Roster)))
	logger.KeyValue("Opposition", fmt.Sprintf("%d units", sc.Mission.EnemyCount))
	logger.KeyValue("Tactic", string(sc.Tactic))
	logger.KeyValue("Seed", sc.Seed)

	durationCap, _ := cmd.Flags().GetFloat64("duration-cap")
	if realTime {
		runRealTime(b, durationCap)
	} else {
		runFastForward(b, durationCap)
	}

	if !b.Phase().Terminal() {
		logger.Infof("Forcing the scripted ending at %.1fs", b.Elapsed())
		b.ForceEnd()
	}

	debrief, err := report.NewDebrief(in, b, log)
	if err != nil {
		return err
	}
	debrief.PrintConsole()

	if path, _ := cmd.Flags().GetString("save-debrief"); path != "" {
		if err := saveDebrief(debrief, path); err != nil {
			return err
		}
		logger.Successf("Debrief saved to: %s", path)
	}

	if archive, _ := cmd.Flags().GetBool("archive"); archive {
		if err := archiveDebrief(cmd, debrief, sc); err != nil {
			return err
		}
	}

	return nil
}

// runFastForward advances the battle as fast as the host allows.
func runFastForward(b *battle.Battle, durationCap float64) {
	bar := logger.NewProgressBar(int(durationCap), "Simulating")
	lastWhole := -1

	for !b.Phase().Terminal() && b.Elapsed() < durationCap {
		b.Advance(tickSeconds)
		if whole := int(b.Elapsed()); whole != lastWhole {
			bar.Update(whole)
			lastWhole = whole
		}
	}
	bar.Finish()
}

// runRealTime advances the battle on a wall-clock ticker until it ends,
// the cap is hit, or the user interrupts.
func runRealTime(b *battle.Battle, durationCap float64) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		logger.Warn("\nReceived interrupt signal, ending battle...")
		cancel()
	}()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	last := time.Now()
	for !b.Phase().Terminal() && b.Elapsed() < durationCap {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.Advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

// saveDebrief writes the debrief in the format the file extension asks for.
func saveDebrief(d *report.Debrief, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return d.WriteMarkdown(path)
	default:
		return d.WriteJSON(path)
	}
}

// archiveDebrief stores the debrief in the local archive database.
func archiveDebrief(cmd *cobra.Command, d *report.Debrief, sc *scenario.Scenario) error {
	s, err := store.Open(resolveArchivePath(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.SaveDebrief(d); err != nil {
		return err
	}
	logger.Successf("Debrief %s archived for %s", shortID(d.ID), sc.Name)
	return nil
}
