package main

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/lifecycle"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <image> <cmd> [args...]",
	Short: "Start a new container",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close()

		mem, _ := cmd.Flags().GetInt64("mem")
		cpu, _ := cmd.Flags().GetInt64("cpu")
		ioRead, _ := cmd.Flags().GetInt64("io-read-bps")
		ioWrite, _ := cmd.Flags().GetInt64("io-write-bps")
		pinCPU, _ := cmd.Flags().GetBool("pin-cpu")
		detach, _ := cmd.Flags().GetBool("detach")
		shareIPC, _ := cmd.Flags().GetBool("share-ipc")
		propagateMount, _ := cmd.Flags().GetString("propagate-mount")

		rec, err := mgr.Run(lifecycle.RunOptions{
			Image:             args[0],
			Argv:              args[1:],
			Hostname:          "container",
			MemLimitBytes:     mem,
			CPUQuotaUsec:      cpu,
			IOReadBPS:         ioRead,
			IOWriteBPS:        ioWrite,
			PinCPU:            pinCPU,
			ShareIPC:          shareIPC,
			Detach:            detach,
			PropagateMountDir: propagateMount,
		})
		if err != nil {
			return err
		}

		if detach {
			fmt.Printf("Container started with PID %d\n", rec.PID)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Int64("mem", 0, "Memory limit in bytes (0 = unlimited)")
	runCmd.Flags().Int64("cpu", 0, "CPU quota in microseconds per 100ms period (0 = unlimited)")
	runCmd.Flags().Int64("io-read-bps", 0, "Read bandwidth limit in bytes/sec against device 8:0 (0 = unlimited)")
	runCmd.Flags().Int64("io-write-bps", 0, "Write bandwidth limit in bytes/sec against device 8:0 (0 = unlimited)")
	runCmd.Flags().Bool("pin-cpu", false, "Pin the container to a single CPU, round-robin assigned")
	runCmd.Flags().Bool("detach", false, "Run the container in the background")
	runCmd.Flags().Bool("share-ipc", false, "Share the host's IPC namespace instead of creating a new one")
	runCmd.Flags().String("propagate-mount", "", "Host directory (a pre-existing mount point) to bind into the container")
}

