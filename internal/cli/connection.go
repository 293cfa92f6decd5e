package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/prodmig/internal/config"
	"github.com/vvka-141/prodmig/internal/store"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	driver         string
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	aws            bool
	awsRegion      string
	google         bool
	googleInstance string
	azure          bool
	azureTenantID  string
	azureClientID  string
}

func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	flags := cmd.Flags()

	flags.StringVar(&f.driver, "driver", "",
		"Target store: postgres|mysql|sqlite\n"+
			"Precedence: --driver > $PRODMIG_DRIVER > prodmig.yaml > postgres")

	// Connection string flag (mutually exclusive with granular flags)
	flags.StringVar(&f.connection, "connection", "",
		"Connection string: PostgreSQL or MySQL URI, MySQL DSN, ADO.NET, or sqlite:<path>\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: Use PRODMIG_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://user@localhost:5432/shop")

	// Granular connection flags
	// Precedence: flag > environment variable > prodmig.yaml > default
	flags.StringVarP(&f.host, "host", "h", "",
		"Database server host\n"+
			"Precedence: --host > $PGHOST / $MYSQL_HOST > localhost")
	flags.IntVarP(&f.port, "port", "p", 0,
		"Database server port\n"+
			"Precedence: --port > $PGPORT / $MYSQL_PORT > 5432 / 3306")
	flags.StringVarP(&f.username, "username", "U", "",
		"Database user (default: $PGUSER / $MYSQL_USER or current OS user)")
	flags.StringVarP(&f.database, "database", "d", "",
		"Database name, or the database file for SQLite\n"+
			"Overrides the database in a connection string")
	flags.StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer for PostgreSQL, or $PGSSLMODE)")

	flags.BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication (PostgreSQL only)")
	flags.StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for RDS IAM authentication (overrides $AWS_REGION)")
	flags.BoolVar(&f.google, "google", false,
		"Enable Google Cloud SQL IAM authentication (PostgreSQL only)")
	flags.StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name: project:region:instance")
	flags.BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication (PostgreSQL only)\n"+
			"Uses DefaultAzureCredential chain (Managed Identity, Azure CLI, etc.)")
	flags.StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	flags.StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
}

// resolveConnectionFromFlags resolves connection configuration from flags,
// the environment, and prodmig.yaml.
func resolveConnectionFromFlags(flags connectionFlags, projectCfg *config.ProjectConfig) (*prodmig.ConnectionConfig, error) {
	granularFlags := &store.GranularConnFlags{
		Driver:   flags.driver,
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &store.CloudFlags{
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		Google:         flags.google,
		GoogleInstance: flags.googleInstance,
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
	}

	return store.ResolveConnectionParams(
		flags.connection,
		granularFlags,
		cloudFlags,
		store.LoadFromEnvironment(),
		projectCfg,
	)
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
// The password is never logged.
func logConnectionVerbose(logger prodmig.Logger, connConfig *prodmig.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Driver: %s", connConfig.Driver)
	if connConfig.Driver == prodmig.DriverSQLite {
		logger.Verbose("  Database File: %s", connConfig.Database)
		return
	}
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	if connConfig.SSLMode != "" {
		logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	}
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}
