// Godotserve is a local HTTPS development server for Godot web exports.
//
// It serves the export directory over TLS with the cross-origin isolation
// headers that threaded WebAssembly builds need, creates a self-signed
// certificate for localhost on first run, and injects an audio bootstrap
// script into HTML pages.
//
// Usage:
//
//	godotserve serve [flags]
//
// See 'godotserve --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/godotserve/internal/config"
	"github.com/muurk/godotserve/internal/logging"
	"github.com/muurk/godotserve/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Flags shared by every command
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "godotserve",
	Short: "HTTPS development server for Godot web exports",
	Long: `A local HTTPS server for testing Godot web exports in the browser.

Threaded Godot exports need SharedArrayBuffer, which browsers only enable for
cross-origin isolated pages served over a secure context. godotserve sets the
required headers on every response and creates a self-signed certificate for
localhost the first time it runs.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./"+config.FileName+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(certCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and starts logging. The log level comes
// from --log-level, then the environment, then the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = cfg.Logging.Level
	}
	if err := logging.Initialize(level); err != nil {
		return nil, err
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			for _, key := range []string{"Version", "Commit", "Go version", "Platform"} {
				fmt.Printf("%-11s %s\n", key+":", version.Details()[key])
			}
			return
		}
		fmt.Printf("godotserve %s\n", version.Full())
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Show build details")
}
