package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var freezeCmd = &cobra.Command{
	Use:   "freeze <pid>",
	Short: "Suspend every process in a container's cgroup",
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

		return mgr.Freeze(pid)
	},
}

var thawCmd = &cobra.Command{
	Use:   "thaw <pid>",
	Short: "Resume a frozen container",
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

		return mgr.Thaw(pid)
	},
}
