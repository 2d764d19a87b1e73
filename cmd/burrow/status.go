package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <pid>",
	Short: "Show a container's command, mounts, and live resource usage",
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

		rec, metrics, err := mgr.Status(pid)
		if err != nil {
			return err
		}

		fmt.Printf("Container:       %s\n", rec.ID)
		fmt.Printf("State:           %s\n", rec.State)
		fmt.Printf("Command:         %s\n", strings.Join(rec.Argv, " "))
		if rec.PropagateMountDir != "" {
			fmt.Printf("Propagated Mount: %s\n", rec.PropagateMountDir)
		}
		fmt.Printf("Memory Usage:    %d bytes\n", metrics.MemoryCurrentBytes)
		fmt.Printf("CPU Usage:       %d usec\n", metrics.CPUUsageUsec)
		fmt.Printf("Active Processes: %d\n", metrics.PIDsCurrent)
		return nil
	},
}
