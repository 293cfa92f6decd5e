package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/prodmig/internal/extract"
	"github.com/vvka-141/prodmig/internal/files/filesystem"
	"github.com/vvka-141/prodmig/internal/logging"
	"github.com/vvka-141/prodmig/internal/render"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input]",
	Short: "Decode the dump and print the recovered products without touching a database",
	Long: `Extract runs only the first half of a migration: it decodes the dump under
the candidate encodings and prints every recovered product.

Records go to stdout; progress goes to stderr so the output can be piped.
Without --output, a table is drawn when stdout is a terminal and tab separated
values are written otherwise.

Output formats:
  table  bordered table for reading
  tsv    header line plus one tab separated line per record
  yaml   encoding, scan statistics, and records
  sql    one value-tuple line per record, readable by prodmig itself

Examples:
  prodmig extract products.sql
  prodmig extract dump.sql --encoding cp1252 --output yaml
  prodmig extract dump.sql --output sql > clean.sql`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

type extractFlagValues struct {
	pipeline pipelineFlags
	output   string
}

var extractFlags extractFlagValues

func init() {
	rootCmd.AddCommand(extractCmd)

	registerPipelineFlags(extractCmd, &extractFlags.pipeline)
	extractCmd.Flags().StringVarP(&extractFlags.output, "output", "o", "",
		"Output format: "+formatNames()+" (default: table on a terminal, tsv otherwise)")
}

func formatNames() string {
	names := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// resolveOutputFormat returns the --output format, or the default for out.
func resolveOutputFormat(flag string, out io.Writer) (render.Format, bool, error) {
	f, _ := out.(*os.File)
	styled := render.IsTerminal(f)

	if flag == "" {
		return render.DefaultFormat(f), styled, nil
	}
	format, err := render.ParseFormat(flag)
	if err != nil {
		return "", false, err
	}
	return format, styled, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	out := cmd.OutOrStdout()
	logger := logging.NewConsoleLoggerWithWriters(verbose, cmd.ErrOrStderr(), cmd.ErrOrStderr())

	format, styled, err := resolveOutputFormat(extractFlags.output, out)
	if err != nil {
		return err
	}

	if err := loadEnvFiles(extractFlags.pipeline.envFiles, logger); err != nil {
		return err
	}
	projectCfg, err := loadProjectConfig(workingDir())
	if err != nil {
		return err
	}

	_, candidates, err := resolveEncodings(extractFlags.pipeline.encodings, projectCfg)
	if err != nil {
		return err
	}
	inputPath := resolveInputPath(args, projectCfg)

	ctx, cancel := interruptibleContext(cmd, "extraction")
	defer cancel()

	extractor := extract.New(filesystem.NewOSFileSystem(), candidates, logger)
	result, err := extractor.Extract(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	logger.Info("Found %d products in %s (%d candidate lines, %d skipped).",
		len(result.Records), inputPath, result.Stats.Candidates, result.Stats.Skipped())
	if result.Stats.Skipped() > 0 {
		logger.Verbose("Skipped lines: %v", result.Stats.SkippedLines)
	}

	if err := render.Write(out, format, result, styled); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}
