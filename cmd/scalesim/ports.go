package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports the simulator can write to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := enumerator.GetDetailedPortsList()
			if err != nil {
				return fmt.Errorf("enumerate ports: %w", err)
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tUSB\tVID:PID\tSERIAL\tPRODUCT")
			for _, p := range ports {
				usb, ids := "no", "-"
				if p.IsUSB {
					usb, ids = "yes", p.VID+":"+p.PID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, usb, ids, dash(p.SerialNumber), dash(p.Product))
			}
			return w.Flush()
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
