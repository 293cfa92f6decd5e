package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/prodmig/internal/config"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Password is NOT a CLI flag. Use one of these instead:
//  1. $PGPASSWORD or $MYSQL_PWD
//  2. ~/.pgpass (read by pgx)
//  3. A connection string with an embedded password
type GranularConnFlags struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// Driver and Database are excluded: both may refine a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects and parameterizes cloud IAM authentication.
// The Azure client secret is only read from $AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AWS       bool
	AWSRegion string

	Google         bool
	GoogleInstance string

	Azure         bool
	AzureTenantID string
	AzureClientID string
}

func (c *CloudFlags) selected() []prodmig.AuthMethod {
	var methods []prodmig.AuthMethod
	if c.AWS {
		methods = append(methods, prodmig.AuthMethodAWSIAM)
	}
	if c.Google {
		methods = append(methods, prodmig.AuthMethodGoogleIAM)
	}
	if c.Azure || c.AzureTenantID != "" || c.AzureClientID != "" {
		methods = append(methods, prodmig.AuthMethodAzureEntraID)
	}
	return methods
}

// EnvVars represents the environment variables the resolver consults.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
// and https://dev.mysql.com/doc/refman/8.0/en/environment-variables.html
type EnvVars struct {
	PRODMIG_DRIVER            string
	PRODMIG_CONNECTION_STRING string
	DATABASE_URL              string // Full connection string (Heroku/Rails convention)

	PGHOST     string
	PGPORT     string
	PGUSER     string
	PGPASSWORD string
	PGDATABASE string
	PGSSLMODE  string

	MYSQL_HOST     string
	MYSQL_PORT     string
	MYSQL_USER     string
	MYSQL_PWD      string
	MYSQL_DATABASE string

	AWS_REGION string

	// Azure SDK standard names
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads every variable in EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PRODMIG_DRIVER:            os.Getenv("PRODMIG_DRIVER"),
		PRODMIG_CONNECTION_STRING: os.Getenv("PRODMIG_CONNECTION_STRING"),
		DATABASE_URL:              os.Getenv("DATABASE_URL"),
		PGHOST:                    os.Getenv("PGHOST"),
		PGPORT:                    os.Getenv("PGPORT"),
		PGUSER:                    os.Getenv("PGUSER"),
		PGPASSWORD:                os.Getenv("PGPASSWORD"),
		PGDATABASE:                os.Getenv("PGDATABASE"),
		PGSSLMODE:                 os.Getenv("PGSSLMODE"),
		MYSQL_HOST:                os.Getenv("MYSQL_HOST"),
		MYSQL_PORT:                os.Getenv("MYSQL_PORT"),
		MYSQL_USER:                os.Getenv("MYSQL_USER"),
		MYSQL_PWD:                 os.Getenv("MYSQL_PWD"),
		MYSQL_DATABASE:            os.Getenv("MYSQL_DATABASE"),
		AWS_REGION:                os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:           os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:           os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:       os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

// ResolveConnectionParams resolves connection parameters. For each value the
// precedence is CLI flag > environment variable > prodmig.yaml > default.
//
// The connection string comes from --connection, then $PRODMIG_CONNECTION_STRING,
// then $DATABASE_URL (the last only when no granular flags were given).
// Otherwise the config is assembled from granular values for the resolved driver.
// The -d flag overrides the database named in a connection string.
//
// Returns an error wrapping prodmig.ErrInvalidConfig if BOTH --connection and
// granular flags are provided, or if more than one cloud auth method is selected.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*prodmig.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/shop\"\n"+
				"  2. Granular flags: --driver mysql -h localhost -p 3306 -U myuser -d shop\n"+
				"  3. Environment variables: export PGHOST=localhost PGUSER=myuser PGDATABASE=shop: %w",
			prodmig.ErrInvalidConfig)
	}

	driver, explicit, err := resolveDriver(granularFlags.Driver, envVars.PRODMIG_DRIVER, pc.Driver)
	if err != nil {
		return nil, err
	}

	connStr := connStringFlag
	if connStr == "" {
		connStr = envVars.PRODMIG_CONNECTION_STRING
	}
	if connStr == "" && granularFlags.IsEmpty() {
		connStr = envVars.DATABASE_URL
	}

	var cfg *prodmig.ConnectionConfig
	if connStr != "" {
		cfg, err = resolveFromConnectionString(connStr, driver, explicit, envVars)
		if err == nil && granularFlags.Database != "" {
			cfg.Database = granularFlags.Database
		}
	} else {
		cfg, err = resolveFromGranularParams(driver, granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, err
	}

	if err := applyAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDriver returns the driver and whether it was chosen explicitly
// (rather than defaulted).
func resolveDriver(flag, env, yaml string) (prodmig.Driver, bool, error) {
	for _, candidate := range []string{flag, env, yaml} {
		if candidate != "" {
			d, err := prodmig.ParseDriver(candidate)
			return d, true, err
		}
	}
	return prodmig.DefaultDriver, false, nil
}

func resolveFromConnectionString(connStr string, driver prodmig.Driver, explicit bool, envVars *EnvVars) (*prodmig.ConnectionConfig, error) {
	cfg, err := parseConnectionString(connStr, driver)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	if explicit && cfg.Driver != driver {
		return nil, fmt.Errorf("driver %q conflicts with %s connection string: %w", driver, cfg.Driver, prodmig.ErrInvalidConfig)
	}

	// libpq treats PGSSLMODE as a fallback for connection strings.
	if cfg.Driver == prodmig.DriverPostgres && cfg.SSLMode == "prefer" && envVars.PGSSLMODE != "" && !hasSSLMode(connStr) {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	return cfg, nil
}

func hasSSLMode(connStr string) bool {
	lower := strings.ToLower(connStr)
	return strings.Contains(lower, "sslmode") || strings.Contains(lower, "ssl mode")
}

// resolveFromGranularParams builds a ConnectionConfig from flags, environment
// variables, and prodmig.yaml, in that order of precedence.
func resolveFromGranularParams(
	driver prodmig.Driver,
	flags *GranularConnFlags,
	envVars *EnvVars,
	pc config.ConnectionConfig,
) (*prodmig.ConnectionConfig, error) {
	cfg := &prodmig.ConnectionConfig{
		Driver:           driver,
		AuthMethod:       prodmig.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	if driver == prodmig.DriverSQLite {
		cfg.Database = firstNonEmpty(flags.Database, pc.Database)
		return cfg, nil
	}

	var env struct{ host, port, user, password, database, sslmode string }
	var portVar string
	switch driver {
	case prodmig.DriverMySQL:
		env.host, env.port, env.user = envVars.MYSQL_HOST, envVars.MYSQL_PORT, envVars.MYSQL_USER
		env.password, env.database = envVars.MYSQL_PWD, envVars.MYSQL_DATABASE
		portVar = "$MYSQL_PORT"
	default:
		env.host, env.port, env.user = envVars.PGHOST, envVars.PGPORT, envVars.PGUSER
		env.password, env.database, env.sslmode = envVars.PGPASSWORD, envVars.PGDATABASE, envVars.PGSSLMODE
		portVar = "$PGPORT"
	}

	cfg.Host = firstNonEmpty(flags.Host, env.host, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.port != "":
		port, err := strconv.Atoi(env.port)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value '%s': must be an integer: %w", portVar, env.port, prodmig.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = driver.DefaultPort()
	}

	cfg.Username = firstNonEmpty(flags.Username, env.user, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = env.password
	cfg.Database = firstNonEmpty(flags.Database, env.database, pc.Database)

	cfg.SSLMode = firstNonEmpty(flags.SSLMode, env.sslmode, pc.SSLMode)
	if cfg.SSLMode == "" && driver == prodmig.DriverPostgres {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}

// applyAuth selects the authentication method: cloud flags first, then
// prodmig.yaml. Cloud parameters follow flag > environment > yaml.
func applyAuth(cfg *prodmig.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	selected := flags.selected()
	if len(selected) > 1 {
		return fmt.Errorf("only one of --aws, --google, --azure may be used: %w", prodmig.ErrInvalidConfig)
	}

	method := prodmig.AuthMethodStandard
	if len(selected) == 1 {
		method = selected[0]
	} else {
		m, err := prodmig.ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return fmt.Errorf("auth_method in %s: %w", config.ConfigFileName, err)
		}
		method = m
	}

	cfg.AuthMethod = method
	switch method {
	case prodmig.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case prodmig.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	case prodmig.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
