package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop <pid>",
	Short: "Stop a running container (SIGTERM, then SIGKILL after a grace period)",
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

		return mgr.Stop(pid)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <pid>",
	Short: "Remove a stopped container's state, overlay, and cgroup",
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

		return mgr.Rm(pid)
	},
}
