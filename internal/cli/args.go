package cli

import (
	"os"

	"github.com/vvka-141/prodmig/internal/config"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// InputPathEnv names the environment variable that supplies the dump path.
const InputPathEnv = "PRODMIG_INPUT"

// resolveInputPath returns the dump to read.
// Precedence: positional argument > $PRODMIG_INPUT > prodmig.yaml input > products.sql.
func resolveInputPath(args []string, projectCfg *config.ProjectConfig) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if v := os.Getenv(InputPathEnv); v != "" {
		return v
	}
	if projectCfg != nil && projectCfg.Input != "" {
		return projectCfg.Input
	}
	return prodmig.DefaultInputPath
}
