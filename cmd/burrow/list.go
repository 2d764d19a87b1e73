package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List known containers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer mgr.Close()

		recs, err := mgr.List()
		if err != nil {
			return err
		}

		fmt.Printf("%-8s %-36s %-8s %s\n", "PID", "ID", "STATE", "COMMAND")
		for _, rec := range recs {
			fmt.Printf("%-8d %-36s %-8s %s\n", rec.PID, rec.ID, rec.State, strings.Join(rec.Argv, " "))
		}
		return nil
	},
}
