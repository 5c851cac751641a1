package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
)

// renderCommand creates the render command: report in, artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{
		View:   c.Config.View,
		Locale: c.Config.Locale,
	}

	cmd := &cobra.Command{
		Use:   "render <report>",
		Short: "Render a report's script treemap to HTML, JSON, DOT, SVG, PNG, or PDF",
		Long: `Render a report's script treemap to one or more output files.

The report argument is a viewer options document or a bare audit report,
read from a local file (the debug.json convention) or an HTTP(S) URL.

Examples:
  lighthouse-treemap render debug.json
  lighthouse-treemap render report.json -f html,json -o out/page
  lighthouse-treemap render https://ci.example.com/lhr.json -f svg --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if opts.View != "" {
				if err := pipeline.ValidateView(opts.View); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", c.Config.Formats, "output format(s): html (default), json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.View, "view", opts.View, "initial view mode: all, unused-bytes, duplicate-modules")
	cmd.Flags().StringVar(&opts.Locale, "locale", opts.Locale, "BCP 47 locale for number formatting (default: report locale)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "HTML page title (default: audited page URL)")
	cmd.Flags().StringVar(&opts.RootName, "root-name", "", "name for the combined root node")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include byte counts in outline labels (dot, svg, png, pdf)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "outline depth limit (0 = default, negative = unlimited)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "inline the options document into the HTML page")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached report documents")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Source))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		source:    opts.Source,
		output:    output,
	})
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(result.Stats.ContainerCount, result.Stats.NodeCount, result.Stats.TotalBytes,
		result.CacheInfo.LoadHit && result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Serve it live", appName+" serve -s "+opts.Source)

	return nil
}

// artifactWriteParams bundles what writeArtifacts needs to place rendered
// outputs on disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	source    string
	output    string
}

// writeArtifacts writes each rendered format to its own file and returns
// the paths written, in the order the formats were requested.
//
// A single format goes to the output path as-is (or the derived base plus
// the format extension); multiple formats share a base and differ in
// extension.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	base := basePath(p.output, p.source)

	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return nil, fmt.Errorf("no %s artifact was rendered", format)
		}

		path := base + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}

		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output flag and the
// report source. An explicit output keeps its path with any known format
// extension stripped; otherwise the base comes from the source file name,
// or a fixed name for URL and stdin sources, which make poor file names.
func basePath(output, source string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if lhreport.IsURL(source) || source == "-" {
		return "treemap"
	}
	return strings.TrimSuffix(source, filepath.Ext(source))
}
