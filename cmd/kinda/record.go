package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/kinda/pkg/chaos"
	"github.com/jihwankim/kinda/pkg/registry"
	"github.com/jihwankim/kinda/pkg/replay"
	"github.com/jihwankim/kinda/pkg/security"
	"github.com/jihwankim/kinda/pkg/transform"
)

var recordCmd = &cobra.Command{
	Use:   "record <file.kinda>",
	Args:  cobra.ExactArgs(1),
	Short: "Transform a file and record every RNG draw to a session file",
	Long: `Runs the transform pipeline once to establish which constructs a file
uses, then drives the Chaos Engine with a Recorder attached as its call
observer, and saves the resulting session for later replay. Since the
transform pipeline itself is pure CPU and consults no Chaos Engine, the
session recorded here captures the pipeline's own reproducibility probe
draws (one Random() sample per construct occurrence) rather than a full host
program execution, which happens outside this repository's scope.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().Int64("seed", 0, "chaos engine seed (0 derives one from OS entropy and prints it)")
	recordCmd.Flags().String("mood", "playful", "personality: reliable|cautious|playful|chaotic")
	recordCmd.Flags().Int("level", 5, "chaos level, 1-10")
	recordCmd.Flags().String("session", "", "output session file path (default: <file>.session.yaml)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	path := args[0]
	seed, _ := cmd.Flags().GetInt64("seed")
	mood, _ := cmd.Flags().GetString("mood")
	level, _ := cmd.Flags().GetInt("level")
	sessionPath, _ := cmd.Flags().GetString("session")
	if sessionPath == "" {
		sessionPath = path + ".session.yaml"
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("record: read %s: %w", path, err)
	}

	reg, err := registry.Build()
	if err != nil {
		return fmt.Errorf("record: build registry: %w", err)
	}

	pipeline := transform.NewPipeline(reg, transform.PipelineConfig{
		Security: security.Config{},
	})
	res, err := pipeline.Run(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("record: transform %s: %w", path, err)
	}

	if seed == 0 {
		seed, err = chaos.DeriveSeed()
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		fmt.Fprintf(stdout, "derived seed %d (pass --seed %d to reproduce this run)\n", seed, seed)
	}
	engine, err := chaos.Init(seed, mood, level)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	recording := replay.StartRecording(engine, path)

	for construct, count := range res.ConstructUsage {
		engine.PushContext(construct)
		for i := 0; i < count; i++ {
			if desc, ok := reg.Lookup(construct); ok && desc.ProbabilityKey != "" {
				engine.Probability(chaos.ProbabilityKey(desc.ProbabilityKey))
			}
			engine.Random()
		}
		engine.PopContext()
	}

	session := recording.Stop(uuid.NewString())
	if err := replay.Save(sessionPath, session); err != nil {
		return fmt.Errorf("record: save session: %w", err)
	}

	fmt.Fprintf(stdout, "%s -> %s (%d rng calls, %d constructs)\n",
		path, sessionPath, session.Stats.TotalCalls, len(session.Stats.ConstructUsage))
	return nil
}
