package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
)

// inspectCommand creates the inspect command: browse a report's treemap
// in the terminal without rendering any files.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := pipeline.Options{
		Locale: c.Config.Locale,
	}
	var noCache bool

	cmd := &cobra.Command{
		Use:   "inspect <report>",
		Short: "Browse a report's treemap in the terminal",
		Long: `Browse a report's aggregated resource tree interactively.

Bundles are shown largest first with their byte share of the whole tree
and the unused fraction per node. Press d to switch to the
duplicate-modules panel.

Examples:
  lighthouse-treemap inspect debug.json
  lighthouse-treemap inspect https://ci.example.com/lhr.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			return c.runInspect(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().StringVar(&opts.RootName, "root-name", "", "name for the combined root node")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached report documents")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runInspect loads and builds the tree, then hands it to the browser.
func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", opts.Source))
	spinner.Start()

	o, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}

	spinner.Update("Building treemap...")
	tree, err := runner.Build(ctx, o, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Largest-first reads best in a terminal list.
	tree.Root.SortBySize()

	title := tree.Root.Name
	if o.Report != nil && o.Report.URL() != "" {
		title = o.Report.URL()
	}

	p := tea.NewProgram(NewInspectModel(tree, title))
	_, err = p.Run()
	return err
}
