package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"portfolio/pkg/config"
)

// Configuration flags
var (
	portNumber     string
	dataDir        string
	storageBackend string
	logLevel       string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio serves and manages a personal photo, drawing and music portfolio",
		Long: `Portfolio is a command line application that serves a personal portfolio site
and its content manager. Content lives in a single JSON document and uploads in
a local directory, Google Cloud Storage or Amazon S3.`,
		SilenceUsage: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Set the DATA_DIR (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "Set the STORAGE_BACKEND: local, memory, gcs or s3 (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the LOG_LEVEL (overrides environment variable)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListContentCmd())
	rootCmd.AddCommand(newListFilesCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	if portNumber != "" {
		os.Setenv("PORT", portNumber)
	}

	if dataDir != "" {
		os.Setenv("DATA_DIR", dataDir)
	}

	if storageBackend != "" {
		os.Setenv("STORAGE_BACKEND", storageBackend)
	}

	if logLevel != "" {
		os.Setenv("LOG_LEVEL", logLevel)
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}
