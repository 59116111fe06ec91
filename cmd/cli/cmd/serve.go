package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/feed"
	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a battle and stream snapshots over websocket",
	Long: `Run a scenario in real time and broadcast every snapshot to
websocket spectators on /feed. Renderers draw straight from the feed.`,
	RunE: serveBattle,
}

func init() {
	serveCmd.Flags().StringP("scenario", "s", "", "scenario name to serve")
	serveCmd.Flags().StringP("file", "f", "", "scenario file (YAML)")
	serveCmd.Flags().String("addr", ":8474", "listen address")
	serveCmd.Flags().Int64("seed", 0, "battle seed (overrides the scenario)")
	serveCmd.Flags().String("tactic", "", "tactic: aggressive or defensive (overrides the scenario)")
	serveCmd.Flags().Bool("respawn", false, "respawn wrecked units after a delay")
	serveCmd.Flags().String("tuning", "", "tuning override file")
	serveCmd.Flags().Float64("duration-cap", 600, "safety cap in battle seconds")
}

func serveBattle(cmd *cobra.Command, _ []string) error {
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
	log := report.NewBattleLog(true)
	in.Observer = log

	b, err := battle.New(tuning, in)
	if err != nil {
		return fmt.Errorf("failed to build battle: %w", err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	hub := feed.NewHub(sc.Name)

	mux := http.NewServeMux()
	mux.HandleFunc("/", hub.HandleIndex)
	mux.HandleFunc("/feed", hub.HandleFeed)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Feed server failed: %v", err)
		}
	}()

	logger.Successf("Streaming %s on %s (websocket feed at /feed)", sc.Name, addr)

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

	durationCap, _ := cmd.Flags().GetFloat64("duration-cap")
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	last := time.Now()
loop:
	for !b.Phase().Terminal() && b.Elapsed() < durationCap {
		select {
		case <-ctx.Done():
			break loop
		case now := <-ticker.C:
			b.Advance(now.Sub(last).Seconds())
			last = now
			hub.Broadcast(b.Snapshot())
		}
	}

	if !b.Phase().Terminal() {
		logger.Infof("Forcing the scripted ending at %.1fs", b.Elapsed())
		b.ForceEnd()
	}
	hub.Broadcast(b.Snapshot())

	debrief, err := report.NewDebrief(in, b, log)
	if err != nil {
		return err
	}
	debrief.PrintConsole()

	hub.Close()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}
