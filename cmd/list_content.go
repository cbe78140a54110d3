package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"portfolio/pkg/content"
	"portfolio/pkg/gallery"
	"portfolio/pkg/models"
)

// newListContentCmd creates a new command for listing the content document
func newListContentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-content",
		Short: "List all portfolio entries",
		Long:  `List the entries of every category with their titles and dates.`,
		Run: func(cmd *cobra.Command, args []string) {
			a, err := loadApp(cmd.Context())
			if err != nil {
				log.Fatal(err)
			}
			defer a.Close()
			if err := listContent(a.content); err != nil {
				log.Fatalf("Failed to read content: %v", err)
			}
		},
	}
}

// listContent displays every category and its entries
func listContent(store *content.Store) error {
	doc, err := store.Load()
	if err != nil {
		return err
	}

	fmt.Println("Portfolio Content:")
	fmt.Println("==================")

	total := 0
	for _, c := range models.ListCategories {
		entries := doc.Entries(c)
		total += len(entries)
		fmt.Printf("%s (%d)\n", gallery.Title(c.Dir()), len(entries))
		for _, e := range entries {
			title := e.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("  %s  %s  %s\n", e.Date.Format("2006-01-02"), title, e.Path)
		}
		fmt.Println()
	}

	fmt.Printf("About: updated %s, %d characters\n", doc.About.DateUpdated.Format("2006-01-02 15:04"), len(doc.About.Text))
	fmt.Printf("Total: %d entries\n", total)
	return nil
}
