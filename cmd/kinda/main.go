package main

import (
	"errors"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jihwankim/kinda/pkg/chaos"
	"github.com/jihwankim/kinda/pkg/security"
	"github.com/jihwankim/kinda/pkg/transform"
)

var (
	cfgFile string
	verbose bool
	version = "dev"

	// stdout only wraps os.Stdout with ANSI-translation when it's actually a
	// terminal — piping kinda's output to a file or another process should
	// never embed escape codes in it.
	stdout = newStdout()
)

func newStdout() io.Writer {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return colorable.NewColorableStdout()
	}
	return os.Stdout
}

var rootCmd = &cobra.Command{
	Use:   "kinda",
	Short: "Tilde-construct source-to-source transformer with a chaos/personality runtime",
	Long: `kinda rewrites "~"-prefixed constructs (~sometimes, ~maybe, ~kinda int, ~ish, ...)
into plain host-language code backed by a deterministic, seedable chaos engine,
plus a record/replay layer for reproducing a run's randomness exactly.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./kinda.yaml if present, else kinda/kinda.yaml under the XDG config home)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(fuzzCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the command's documented exit codes: 2 for bad
// flags or arguments, 3 for a security rejection, 4 for a transform failure,
// 1 for anything else.
func exitCode(err error) int {
	var (
		rejected    *transform.RejectedError
		sizeErr     *security.SizeError
		densityErr  *security.DensityError
		syntaxErr   *transform.SyntaxError
		nestingErr  *transform.NestingLimitError
		timeoutErr  *transform.TimeoutError
		unknownErr  *transform.UnknownConstructError
		argErr      *chaos.InvalidArgumentError
		personality *chaos.UnknownPersonalityError
	)
	switch {
	case errors.As(err, &rejected), errors.As(err, &sizeErr), errors.As(err, &densityErr):
		return 3
	case errors.As(err, &syntaxErr), errors.As(err, &nestingErr),
		errors.As(err, &timeoutErr), errors.As(err, &unknownErr):
		return 4
	case errors.As(err, &argErr), errors.As(err, &personality):
		return 2
	default:
		return 1
	}
}
