package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/kinda/pkg/chaos"
	"github.com/jihwankim/kinda/pkg/replay"
	"github.com/jihwankim/kinda/pkg/reporting"
)

var replayCmd = &cobra.Command{
	Use:   "replay <session.yaml>",
	Args:  cobra.ExactArgs(1),
	Short: "Replay a recorded session's RNG draws and report mismatches",
	Long: `Loads a session saved by "kinda record", re-initializes a Chaos Engine from
its header (mood/level/seed), installs a Replayer in place of the live
driver, and re-issues exactly as many Random() draws as the session recorded.
Any mismatch or session-exhaustion event is reported at the end; both are
non-fatal soft faults, never a reason to abort the run.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().String("mood", "", "override the engine personality (default: session's recorded mood)")
	replayCmd.Flags().Int("level", 0, "override the chaos level (default: session's recorded level)")
	replayCmd.Flags().Bool("report", false, "save a JSON replay report carrying the mismatch audit trail")
}

func runReplay(cmd *cobra.Command, args []string) error {
	sessionPath := args[0]
	moodOverride, _ := cmd.Flags().GetString("mood")
	levelOverride, _ := cmd.Flags().GetInt("level")

	session, err := replay.Load(sessionPath)
	if err != nil {
		return fmt.Errorf("replay: load %s: %w", sessionPath, err)
	}

	mood := session.Initial.Mood
	if moodOverride != "" {
		mood = moodOverride
	}
	level := session.Initial.ChaosLevel
	if levelOverride != 0 {
		level = levelOverride
	}
	var seed int64
	if session.Initial.Seed != nil {
		seed = *session.Initial.Seed
	}

	engine, err := chaos.Init(seed, mood, level)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	fallback := chaos.NewPCGDriver(seed)
	replayer, warnings := replay.StartReplay(engine, session, fallback)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	for i := 0; i < session.Stats.TotalCalls; i++ {
		engine.Random()
	}
	replay.StopReplay(engine, fallback)

	fmt.Fprintf(stdout, "replayed %d calls: %d mismatches, %d exhausted\n",
		session.Stats.TotalCalls, len(replayer.Mismatches()), replayer.ExhaustionCount())
	for _, m := range replayer.Mismatches() {
		fmt.Fprintf(stdout, "  mismatch seq=%d expected=%s got=%s (%s)\n", m.Seq, m.Expected, m.Got, m.Reason)
	}

	if wantReport, _ := cmd.Flags().GetBool("report"); wantReport {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		storage, err := reporting.NewStorage(cfg.Reporting.OutputDir, cfg.Reporting.KeepLastN, logger)
		if err != nil {
			return fmt.Errorf("replay: create report storage: %w", err)
		}
		if _, err := storage.SaveReport(buildReplayReport(session, replayer)); err != nil {
			return fmt.Errorf("replay: save report: %w", err)
		}
	}
	return nil
}

// buildReplayReport folds the replay run's mismatch and exhaustion events
// into a TransformReport whose ReplayLog carries one audit entry per
// soft fault, so the report formatter can render a replay the same way it
// renders a transform.
func buildReplayReport(session *replay.Session, rep *replay.Replayer) *reporting.TransformReport {
	now := time.Now()

	var auditLog []reporting.AuditEntry
	for _, m := range rep.Mismatches() {
		auditLog = append(auditLog, reporting.AuditEntry{
			Timestamp: now,
			Action:    "replay_mismatch",
			Success:   false,
			Error:     m.Reason,
			Details:   fmt.Sprintf("seq=%d expected=%s got=%s", m.Seq, m.Expected, m.Got),
		})
	}
	if n := rep.ExhaustionCount(); n > 0 {
		auditLog = append(auditLog, reporting.AuditEntry{
			Timestamp: now,
			Action:    "replay_exhaustion",
			Success:   false,
			Details:   fmt.Sprintf("%d draws fell through to live randomness after the session ran out", n),
		})
	}

	clean := len(auditLog) == 0
	return &reporting.TransformReport{
		TransformID:    "replay-" + session.SessionID,
		SourcePath:     session.InputFile,
		StartTime:      now,
		EndTime:        now,
		Status:         reporting.StatusCompleted,
		Success:        clean,
		Security:       reporting.SecurityInfo{IsSafe: true, RiskLevel: "none"},
		ConstructUsage: session.Stats.ConstructUsage,
		ReplayLog:      auditLog,
	}
}
