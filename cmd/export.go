package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"portfolio/pkg/models"
)

// newExportCmd creates a new command for exporting the content document
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export portfolio content",
		Long:  `Export the content document in the specified format. Supported formats: json, yaml, toml.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}

			a, err := loadApp(cmd.Context())
			if err != nil {
				log.Fatal(err)
			}
			defer a.Close()

			doc, err := a.svc.ListAll()
			if err != nil {
				log.Fatalf("Failed to read content: %v", err)
			}
			if err := exportData(os.Stdout, format, doc); err != nil {
				fmt.Fprintln(os.Stderr, err)
				fmt.Fprintln(os.Stderr, "Supported formats: json, yaml, toml")
				os.Exit(1)
			}
		},
	}
}

// exportData writes doc to w in the specified format
func exportData(w io.Writer, format string, doc *models.ContentDocument) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(doc)
	}
	return fmt.Errorf("unsupported export format: %s", format)
}
