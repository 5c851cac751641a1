package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zhengjing-huang/lighthouse/pkg/archive"
	"github.com/zhengjing-huang/lighthouse/pkg/treemap"
)

// reportsCommand groups access to the durable report archive.
func (c *CLI) reportsCommand() *cobra.Command {
	var uri string

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and retrieve archived reports",
		Long: `List and retrieve reports archived by the viewer.

These commands talk to the MongoDB archive directly, so they see reports
from every viewer instance sharing it. The in-memory archive of a plain
serve run is per-process and not reachable here.

Examples:
  lighthouse-treemap reports list
  lighthouse-treemap reports show 4f9c... -o report.json
  lighthouse-treemap reports delete 4f9c...`,
	}
	cmd.PersistentFlags().StringVar(&uri, "archive", c.Config.ArchiveURI, "MongoDB connection string")

	cmd.AddCommand(c.reportsListCommand(&uri))
	cmd.AddCommand(c.reportsShowCommand(&uri))
	cmd.AddCommand(c.reportsDeleteCommand(&uri))

	return cmd
}

func (c *CLI) reportsListCommand(uri *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openArchive(ctx, *uri)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			recs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No archived reports")
				return nil
			}

			fmt.Println(reportTable(recs))
			printNewline()
			printNextStep("Reopen one", appName+" reports show <id>")
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", archive.DefaultListLimit, "maximum number of reports to list")

	return cmd
}

func (c *CLI) reportsShowCommand(uri *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openArchive(ctx, *uri)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no archived report with id %q", args[0])
			}

			printKeyValue("ID", rec.ID)
			printKeyValue("URL", rec.URL)
			if rec.FetchTime != "" {
				printKeyValue("Fetched", rec.FetchTime)
			}
			if rec.View != "" {
				printKeyValue("View", rec.View)
			}
			printKeyValue("Size", treemap.FormatBytes(rec.ResourceBytes))
			printKeyValue("Unused", fmt.Sprintf("%s (%s)",
				treemap.FormatBytes(rec.UnusedBytes),
				treemap.FormatPercent(rec.UnusedBytes, rec.ResourceBytes)))
			printKeyValue("Created", rec.CreatedAt.Format(time.RFC3339))

			if out != "" {
				if len(rec.Options) == 0 {
					return errors.New("record has no options body to write")
				}
				if err := os.WriteFile(out, rec.Options, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				printNewline()
				printFile(out)
				printNextStep("Render it", fmt.Sprintf("%s render %s", appName, out))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report's options document to a file")

	return cmd
}

func (c *CLI) reportsDeleteCommand(uri *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openArchive(ctx, *uri)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

// openArchive connects to the configured archive. Unlike serve, these
// commands cannot degrade to memory: a listing over an empty in-process
// store would just be misleading.
func (c *CLI) openArchive(ctx context.Context, uri string) (archive.Store, error) {
	if uri == "" {
		return nil, errors.New("no archive configured: set --archive or archive_uri in the config file")
	}
	store, err := archive.NewMongoStore(ctx, archive.MongoConfig{URI: uri})
	if err != nil {
		return nil, fmt.Errorf("connect archive: %w", err)
	}
	return store, nil
}

// reportTable renders archive summaries as a table, newest first.
func reportTable(recs []*archive.Record) string {
	rows := [][]string{}
	for _, rec := range recs {
		id := rec.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			truncateLabel(rec.URL, 40),
			rec.View,
			treemap.FormatBytes(rec.ResourceBytes),
			treemap.FormatPercent(rec.UnusedBytes, rec.ResourceBytes),
			formatRelativeTime(rec.CreatedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "URL", "View", "Size", "Unused", "Loaded").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return StyleHighlight
			case 1:
				return listNormalStyle
			default:
				return listDimStyle
			}
		}).
		Render()
}
