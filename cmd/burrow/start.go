package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <pid>",
	Short: "Restart a stopped container, reusing its overlay and limits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid pid %q: %w", args[0], err)
		}

		mgr, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close()

		rec, err := mgr.Start(pid)
		if err != nil {
			return err
		}

		if rec.Detach {
			fmt.Printf("Container restarted with PID %d\n", rec.PID)
		}
		return nil
	},
}
