package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/godotserve/internal/certs"
	"github.com/muurk/godotserve/internal/ui"
)

// Cert command flags
var (
	certFile  string
	keyFile   string
	certForce bool
	certYes   bool
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Manage the TLS certificate",
	Long: `Create or inspect the certificate used by 'godotserve serve'.

Paths default to the config file values, or cert.pem and key.pem.`,
}

var certEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create a self-signed certificate if none exists",
	Long: `Create a self-signed certificate for localhost and 127.0.0.1 unless both
the certificate and key already exist. With --force the pair is replaced.`,
	Example: `  # Create cert.pem and key.pem if missing
  godotserve cert ensure

  # Replace the existing pair without prompting
  godotserve cert ensure --force --yes`,
	RunE: runCertEnsure,
}

var certInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show details of the current certificate",
	RunE:  runCertInfo,
}

func init() {
	certCmd.PersistentFlags().StringVar(&certFile, "cert", "", "TLS certificate file (default from config)")
	certCmd.PersistentFlags().StringVar(&keyFile, "key", "", "TLS private key file (default from config)")

	certEnsureCmd.Flags().BoolVar(&certForce, "force", false, "Replace an existing certificate")
	certEnsureCmd.Flags().BoolVarP(&certYes, "yes", "y", false, "Do not ask for confirmation")

	certCmd.AddCommand(certEnsureCmd)
	certCmd.AddCommand(certInfoCmd)
}

// certPaths resolves certificate paths from flags and config.
func certPaths() (string, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", "", err
	}
	certPath, keyPath := cfg.TLS.CertPath, cfg.TLS.KeyPath
	if certFile != "" {
		certPath = certFile
	}
	if keyFile != "" {
		keyPath = keyFile
	}
	return certPath, keyPath, nil
}

func runCertEnsure(cmd *cobra.Command, args []string) error {
	certPath, keyPath, err := certPaths()
	if err != nil {
		return err
	}

	existing := fileExists(certPath) && fileExists(keyPath)
	if certForce && existing && !certYes {
		confirmed := ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "REPLACE CERTIFICATE", []string{
			"The existing certificate and key will be overwritten",
			"Browsers that trusted the old certificate will warn again",
		})
		if !confirmed {
			return nil
		}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Certificate",
		Command: "godotserve cert ensure",
		Params: []ui.Param{
			{Key: "Certificate", Value: certPath},
			{Key: "Key", Value: keyPath},
		},
		StepNames: []string{
			"Check existing files",
			"Generate self-signed certificate",
			"Load and verify",
		},
		Troubleshooting: []string{
			"Check that both paths are writable",
			"Delete a corrupt pair and run this command again",
		},
		Output: cmd.OutOrStdout(),
	})

	return runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, ui.StepRunning, "")
		if existing {
			onStep(1, ui.StepComplete, "found")
		} else {
			onStep(1, ui.StepComplete, "missing")
		}

		onStep(2, ui.StepRunning, "")
		switch {
		case certForce:
			pair, err := certs.GenerateSelfSigned()
			if err == nil {
				err = pair.Write(certPath, keyPath)
			}
			if err != nil {
				onStep(2, ui.StepFailed, "")
				return nil, err
			}
			onStep(2, ui.StepComplete, "replaced")
		default:
			created, err := certs.Ensure(certPath, keyPath)
			if err != nil {
				onStep(2, ui.StepFailed, "")
				return nil, err
			}
			if created {
				onStep(2, ui.StepComplete, "generated")
			} else {
				onStep(2, ui.StepSkipped, "kept existing")
			}
		}

		onStep(3, ui.StepRunning, "")
		material, err := certs.Load(certPath, keyPath)
		if err == nil {
			err = material.Validate()
		}
		if err != nil {
			onStep(3, ui.StepFailed, "")
			return nil, err
		}
		info, err := certs.Describe(certPath, keyPath)
		if err != nil {
			onStep(3, ui.StepFailed, "")
			return nil, err
		}
		onStep(3, ui.StepComplete, info.KeyFormat)

		return map[string]string{
			"Valid until": info.NotAfter.Format(time.RFC3339),
			"SHA-256":     info.Fingerprint,
		}, nil
	})
}

func runCertInfo(cmd *cobra.Command, args []string) error {
	certPath, keyPath, err := certPaths()
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())

	info, err := certs.Describe(certPath, keyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printer.PrintError("No certificate", err, []string{
				"Run 'godotserve cert ensure' or start the server once to create one",
			})
			return err
		}
		printer.PrintError("Certificate could not be read", err, nil)
		return err
	}

	if info.Expired(time.Now()) {
		printer.PrintWarning("Certificate is not currently valid", info.Details())
		return nil
	}

	return ui.RenderOnce(printer.Writer(), ui.NewSuccessResult(fmt.Sprintf("Certificate %s", certPath), info.Details()).SetWidth(printer.Width()).Render()+"\n")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
