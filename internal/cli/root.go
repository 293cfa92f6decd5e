package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prodmig",
	Short: "Migrate product rows from a legacy SQL dump into a relational table",
	Long: `prodmig reads a legacy SQL dump, recovers product rows from its value-tuple
lines, and upserts them into a relational table keyed by item_id.

Run without a subcommand to perform the full extract-then-load migration
(same as 'prodmig migrate'). Use 'prodmig extract' to preview the decoded
records without touching any database.

Supported stores: PostgreSQL (default), MySQL/MariaDB, SQLite.

Exit Codes:
  0  - Success (including "nothing to migrate")
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  13 - Ensure-table or upsert failed (nothing committed)
  14 - Input file missing or undecodable`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         migrateRunner(&rootFlags),
}

// rootFlags mirrors migrateFlags so that a bare 'prodmig' accepts the same options.
var rootFlags migrateFlagValues

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// -h is taken by --host, as in psql.
	rootCmd.PersistentFlags().Bool("help", false, "Help for prodmig")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")

	registerMigrateFlags(rootCmd, &rootFlags)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
