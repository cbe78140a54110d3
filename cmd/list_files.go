package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"portfolio/pkg/models"
	"portfolio/pkg/services"
)

// newListFilesCmd creates a new command for listing uploaded files
func newListFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-files [type]",
		Short: "List uploaded files",
		Long:  `List the files in the file store, for one content type (photo, drawing, music, about) or for all of them.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			categories := models.Categories
			if len(args) > 0 {
				c, err := models.ParseCategory(args[0])
				if err != nil {
					log.Fatalf("Unknown content type %q", args[0])
				}
				categories = []models.Category{c}
			}

			a, err := loadApp(cmd.Context())
			if err != nil {
				log.Fatal(err)
			}
			defer a.Close()
			if err := listFiles(cmd.Context(), a.svc, categories); err != nil {
				log.Fatalf("Failed to list files: %v", err)
			}
		},
	}
}

// listFiles displays the stored files of each category
func listFiles(ctx context.Context, svc *services.Service, categories []models.Category) error {
	total := 0
	for _, c := range categories {
		list, err := svc.ListFiles(ctx, c)
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		fmt.Printf("%s (%d)\n", c.Dir(), len(list))
		for _, f := range list {
			fmt.Printf("  %-40s %10d  %s\n", f.Name, f.Size, f.Path)
		}
		fmt.Println()
		total += len(list)
	}
	fmt.Printf("Total: %d files\n", total)
	return nil
}
