package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docuseek/docqa-go/internal/logging"
)

// NewDocsCmd constructs the `docqa docs` command group for managing ingested
// documents from the command line.
func NewDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List and delete ingested documents",
	}
	cmd.AddCommand(newDocsListCmd(), newDocsDeleteCmd())
	return cmd
}

// newDocsListCmd constructs `docqa docs list`.
func newDocsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			docs, err := openDocumentStore(log)
			if err != nil {
				return fmt.Errorf("docs list: %w", err)
			}
			defer docs.Close()

			list, err := docs.ListDocuments(ctx)
			if err != nil {
				return fmt.Errorf("docs list: %w", err)
			}
			if len(list) == 0 {
				fmt.Println("no documents ingested")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tCHUNKS\tSTATUS\tUPLOADED")
			for _, d := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					d.ID, d.Name, d.Size, d.ChunkCount, d.Status,
					d.UploadedAt.Format("2006-01-02 15:04"),
				)
			}
			return tw.Flush()
		},
	}
}

// newDocsDeleteCmd constructs `docqa docs delete <id>`.
func newDocsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a document and its indexed chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			id := args[0]

			docs, err := openDocumentStore(log)
			if err != nil {
				return fmt.Errorf("docs delete: %w", err)
			}
			defer docs.Close()

			index, closeIndex, err := openVectorIndex(ctx, docs, log)
			if err != nil {
				return fmt.Errorf("docs delete: %w", err)
			}
			defer closeIndex()

			if err := docs.DeleteDocument(ctx, id); err != nil {
				return fmt.Errorf("docs delete: %w", err)
			}
			if err := index.RemoveDocument(ctx, id); err != nil {
				return fmt.Errorf("docs delete: removing index entries: %w", err)
			}

			fmt.Printf("deleted %s\n", id)
			return nil
		},
	}
}
