package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/godotserve/internal/config"
	"github.com/muurk/godotserve/internal/discovery"
	"github.com/muurk/godotserve/internal/ui"
)

// configCmd groups config file helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.FileName
	if len(args) == 1 {
		path = args[0]
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if err := config.WriteDefault(path); err != nil {
		printer.PrintError("Config not written", err, []string{"Remove the existing file or choose another path"})
		return err
	}
	printer.PrintSuccess("Config written", map[string]string{"Path": path})
	return nil
}

var scanTimeout int

// discoverCmd finds other godotserve instances on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find godotserve instances on the local network",
	Long: `Browse mDNS for servers started with --mdns.

Useful for opening a build served from another machine on a phone or tablet.`,
	Example: `  # Browse for 3 seconds (default)
  godotserve discover

  # Longer browse on a busy network
  godotserve discover --timeout 10`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Browse timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Discover", "godotserve discover",
		ui.Param{Key: "Service", Value: discovery.ServiceType},
		ui.Param{Key: "Timeout", Value: fmt.Sprintf("%ds", scanTimeout)},
	)

	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	instances, err := scanner.Scan(cmd.Context())
	if err != nil {
		printer.PrintError("Discovery failed", err, []string{"Check that multicast is allowed on this network"})
		return err
	}

	if len(instances) == 0 {
		printer.PrintWarning("No servers found", map[string]string{
			"Hint": "Start a server with 'godotserve serve --mdns'",
		})
		return nil
	}

	details := make(map[string]string, len(instances))
	for _, instance := range instances {
		value := instance.URL()
		if v := instance.GetMetadata("version"); v != "" {
			value += " (" + v + ")"
		}
		details[instance.Name] = value
	}
	printer.PrintSuccess(fmt.Sprintf("Found %d server(s)", len(instances)), details)
	return nil
}
