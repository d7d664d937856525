package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devicecode-go/sim"
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Run a scripted scenario through the decoder",
	Long: `Replay a YAML scenario: each step is shown on the emulated panel for the
given number of refresh cycles, then the decoder state is printed and any
expectations are checked. The command fails on the first unmet expectation.

Examples:
  meter-sim replay sim/testdata/relative.yaml
  meter-sim replay -v --render --scale 2 scenario.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	sc, err := sim.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	out := cmd.OutOrStdout()

	em := sim.NewEmulator()
	d := sc.NewDecoder()
	detach, err := d.Attach(em)
	if err != nil {
		return fmt.Errorf("failed to attach decoder: %w", err)
	}
	defer detach()

	if sc.Name != "" {
		fmt.Fprintf(out, "scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	}

	var scr *screen
	if render {
		scr = newScreen()
	}
	var renderErr error
	err = sc.Replay(em, d, func(r sim.Result) {
		printSnapshot(out, fmt.Sprintf("[%d] %s", r.Index, r.Step.Show), d)
		if scr != nil && renderErr == nil {
			renderErr = scr.dump(out, d)
		}
	})
	if err != nil {
		return err
	}
	if renderErr != nil {
		return fmt.Errorf("render failed: %w", renderErr)
	}
	fmt.Fprintln(out, "ok")
	return nil
}
