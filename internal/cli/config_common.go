package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/prodmig/internal/config"
	"github.com/vvka-141/prodmig/internal/encoding"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// pipelineFlags holds the flags shared by every command that reads a dump.
type pipelineFlags struct {
	encodings []string
	envFiles  []string
}

func registerPipelineFlags(cmd *cobra.Command, f *pipelineFlags) {
	cmd.Flags().StringSliceVar(&f.encodings, "encoding", nil,
		"Candidate input encoding, tried in order (can be specified multiple times)\n"+
			"Precedence: --encoding > prodmig.yaml encodings > utf-8,latin-1,cp1252")
	cmd.Flags().StringSliceVar(&f.envFiles, "env-file", nil,
		"Load environment variables from a dotenv file before resolving configuration\n"+
			"(can be specified multiple times; .env in the working directory is always read)")
}

// loadEnvFiles loads explicit dotenv files, then .env from the working
// directory. Variables already set in the environment are never overwritten,
// so earlier sources win.
func loadEnvFiles(files []string, logger prodmig.Logger) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %q: %w: %w", f, prodmig.ErrInvalidConfig, err)
		}
		logger.Verbose("Loaded environment from %s", f)
	}
	_ = godotenv.Load()
	return nil
}

// loadProjectConfig loads prodmig.yaml from dir.
// Returns nil config if prodmig.yaml does not exist (not an error).
func loadProjectConfig(dir string) (*config.ProjectConfig, error) {
	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, prodmig.ErrInvalidConfig, err)
	}
	return projectCfg, nil
}

// resolveEncodings returns the candidate encodings: flag > prodmig.yaml > default.
func resolveEncodings(flagEncodings []string, projectCfg *config.ProjectConfig) ([]string, []encoding.Candidate, error) {
	names := prodmig.DefaultEncodings
	switch {
	case len(flagEncodings) > 0:
		names = flagEncodings
	case projectCfg != nil && len(projectCfg.Encodings) > 0:
		names = projectCfg.Encodings
	}

	candidates, err := encoding.LookupAll(names)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", prodmig.ErrInvalidConfig, err)
	}
	return names, candidates, nil
}

// resolveTable returns the target table: flag > prodmig.yaml > default.
func resolveTable(flagTable string, projectCfg *config.ProjectConfig) string {
	if flagTable != "" {
		return flagTable
	}
	if projectCfg != nil && projectCfg.Table != "" {
		return projectCfg.Table
	}
	return prodmig.DefaultTable
}

// resolveEffectiveTimeout returns the effective timeout, preferring prodmig.yaml if flag wasn't set.
func resolveEffectiveTimeout(
	cmd *cobra.Command,
	projectCfg *config.ProjectConfig,
	flagTimeout time.Duration,
) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		return projectCfg.TimeoutDuration()
	}
	if flagTimeout < 0 {
		return 0, fmt.Errorf("timeout cannot be negative: %w", prodmig.ErrInvalidConfig)
	}
	return flagTimeout, nil
}

// workingDir returns the directory prodmig.yaml and .env are read from.
func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
