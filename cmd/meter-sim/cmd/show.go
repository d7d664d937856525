package cmd

import (
	"github.com/spf13/cobra"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/sim"
)

var (
	showRel    bool
	showDB     bool
	showHV     bool
	showCycles int
)

var showCmd = &cobra.Command{
	Use:   "show <display>",
	Short: "Decode a single front-panel state",
	Long: `Encode a display string as the instrument would scan it and print what
the decoder makes of it. A leading "+" lights both sign segments; five digits
use the leading half digit.

Examples:
  meter-sim show 12.3
  meter-sim show -- -19.87
  meter-sim show --rel --hv 19999`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showRel, "rel", false, "light the REL annunciator")
	showCmd.Flags().BoolVar(&showDB, "db", false, "light the dB annunciator")
	showCmd.Flags().BoolVar(&showHV, "hv", false, "light the HV annunciator")
	showCmd.Flags().IntVarP(&showCycles, "cycles", "n", 1, "refresh cycles to scan")
}

func runShow(cmd *cobra.Command, args []string) error {
	c, err := sim.Display{Text: args[0], Relative: showRel, Decibel: showDB, HV: showHV}.Cycle()
	if err != nil {
		return err
	}
	em := sim.NewEmulator()
	d := fluke8050a.New()
	detach, err := d.Attach(em)
	if err != nil {
		return err
	}
	defer detach()

	em.Run(c, showCycles)

	out := cmd.OutOrStdout()
	printSnapshot(out, args[0], d)
	if render {
		return newScreen().dump(out, d)
	}
	return nil
}
