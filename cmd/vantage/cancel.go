package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfoundry/vantage/internal/config"
	"github.com/quantfoundry/vantage/internal/control"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a running research run",
	Long: `Write a cancel signal for a vantage process running elsewhere.

The running process watches the signals directory and aborts when the
cancel file appears: in-flight tasks are failed, their dependents are
blocked, and the report covers whatever finished before the abort.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := control.SendCancel(cfg.SignalsDir); err != nil {
			return fmt.Errorf("send cancel signal: %w", err)
		}
		fmt.Printf("Cancel signal written to %s\n", cfg.SignalsDir)
		return nil
	},
}
