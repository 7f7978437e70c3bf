package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rggbconv/internal/bench"
	"github.com/cwbudde/rggbconv/internal/convert"
)

var (
	verifySeed   int64
	verifyRounds int
	verifyMaxLen int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that all strategies agree",
	Long: `Checks the float and integer formulas against each other for every
16-bit value, then runs every strategy on random even-length buffers and
compares the output with the reference conversion.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Int64Var(&verifySeed, "seed", 42, "Random seed")
	verifyCmd.Flags().IntVar(&verifyRounds, "rounds", 1000, "Number of random buffers")
	verifyCmd.Flags().IntVar(&verifyMaxLen, "max-len", 1<<16, "Maximum buffer length in bytes")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyRounds < 0 {
		return fmt.Errorf("rounds cannot be negative")
	}
	if verifyMaxLen < 0 {
		return fmt.Errorf("max-len cannot be negative")
	}

	if err := verifyFormulas(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "formulas agree on all %d values\n", math.MaxUint16+1)

	rng := rand.New(rand.NewSource(verifySeed))
	checked, err := verifyStrategies(convert.Strategies(), rng, verifyRounds, verifyMaxLen)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d strategies agree on %d buffers (%d bytes)\n",
		len(convert.Strategies()), verifyRounds, checked)
	return nil
}

// verifyFormulas compares the integer and float formulas on every 16-bit
// value.
func verifyFormulas() error {
	for v := 0; v <= math.MaxUint16; v++ {
		w := uint16(v)
		if i, f := convert.ShiftInt(w), convert.ScaleFloat(w); i != f {
			return fmt.Errorf("formulas disagree on 0x%04x: int 0x%02x, flt 0x%02x", w, i, f)
		}
	}
	return nil
}

// verifyStrategies runs every strategy on rounds random buffers of even
// length up to maxLen and returns the total number of bytes checked.
// The first round always uses the full 16-bit pattern.
func verifyStrategies(strategies []convert.Strategy, rng *rand.Rand, rounds, maxLen int) (int64, error) {
	var total int64
	for round := 0; round < rounds; round++ {
		var in []byte
		if round == 0 {
			in = bench.Pattern(1 << 16)
		} else {
			in = make([]byte, 2*rng.Intn(maxLen/2+1))
			rng.Read(in)
		}
		if err := bench.Preflight(strategies, in); err != nil {
			return total, fmt.Errorf("round %d: %w", round, err)
		}
		total += int64(len(in))
		slog.Debug("Round verified", "round", round, "len", len(in))
	}
	return total, nil
}
