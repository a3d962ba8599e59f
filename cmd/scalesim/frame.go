package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bft-labs/scalesim/pkg/packet"
)

func newFrameCmd() *cobra.Command {
	channels := 4
	cmd := &cobra.Command{
		Use:   "frame [flags] -- MASS...",
		Short: "Print the frame the simulator sends for one reading",
		Long: "Print the exact bytes the simulator writes for the given channel masses.\n" +
			"Put the masses after -- so negative values are not read as flags.",
		Example: "  scalesim frame --num-channels 4 -- 1200 1350 -5 1420",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != channels {
				return fmt.Errorf("got %d masses for %d channels", len(args), channels)
			}
			masses := make([]int, len(args))
			total := 0
			for i, a := range args {
				m, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("mass %d: %w", i+1, err)
				}
				masses[i] = m
				total += m
			}

			frame, err := packet.Encode(channels, masses, total)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(frame)
			return err
		},
	}
	cmd.Flags().IntVar(&channels, "num-channels", channels, "number of scale channels (4 or 6)")
	return cmd
}
