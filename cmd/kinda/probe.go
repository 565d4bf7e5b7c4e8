package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jihwankim/kinda/pkg/chaos"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print probability() and fuzz_range() for a personality and chaos level",
	Long: `Initializes a Chaos Engine with the given seed/mood/level and prints every
well-known probability key's chaos-adjusted value plus each fuzz range, so a
personality/level combination can be inspected without running a transform.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().Int64("seed", 0, "chaos engine seed (0 derives one from OS entropy)")
	probeCmd.Flags().String("mood", "playful", "personality: reliable|cautious|playful|chaotic")
	probeCmd.Flags().Int("level", 5, "chaos level, 1-10")
}

var probeKeys = []chaos.ProbabilityKey{
	chaos.KeySometimes,
	chaos.KeyMaybe,
	chaos.KeyProbably,
	chaos.KeyRarely,
	chaos.KeySometimesWhile,
	chaos.KeyMaybeFor,
	chaos.KeySortaPrint,
	chaos.KeyKindaBoolTrue,
	chaos.KeyKindaBinaryTrue,
	chaos.KeyAssertEventually,
}

var probeFuzzKinds = []chaos.FuzzKind{chaos.FuzzInt, chaos.FuzzFloat, chaos.FuzzIsh}

func runProbe(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetInt64("seed")
	mood, _ := cmd.Flags().GetString("mood")
	level, _ := cmd.Flags().GetInt("level")

	if seed == 0 {
		derived, err := chaos.DeriveSeed()
		if err != nil {
			return fmt.Errorf("probe: %w", err)
		}
		seed = derived
	}
	engine, err := chaos.Init(seed, mood, level)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}

	fmt.Fprintf(stdout, "personality=%s chaos_level=%d seed=%d\n\n", engine.Personality(), engine.ChaosLevel(), engine.Seed())

	probTable := tablewriter.NewWriter(stdout)
	probTable.SetHeader([]string{"probability key", "value"})
	for _, key := range probeKeys {
		probTable.Append([]string{string(key), fmt.Sprintf("%.4f", engine.Probability(key))})
	}
	probTable.Render()

	fmt.Fprintln(stdout)

	fuzzTable := tablewriter.NewWriter(stdout)
	fuzzTable.SetHeader([]string{"fuzz kind", "min", "max"})
	for _, kind := range probeFuzzKinds {
		lo, hi := engine.FuzzRange(kind)
		fuzzTable.Append([]string{string(kind), fmt.Sprintf("%.4f", lo), fmt.Sprintf("%.4f", hi)})
	}
	fuzzTable.Render()

	return nil
}
