package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/prodmig/internal/config"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

func TestResolveConnectionParams_Defaults(t *testing.T) {
	t.Setenv("USER", "alice")

	cfg, err := ResolveConnectionParams("", nil, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, prodmig.DriverPostgres, cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, "prefer", cfg.SSLMode)
	assert.Equal(t, prodmig.AuthMethodStandard, cfg.AuthMethod)
}

func TestResolveConnectionParams_Precedence(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		Host:     "yaml-host",
		Port:     6000,
		Username: "yaml-user",
		Database: "yaml-db",
		SSLMode:  "require",
	}}

	tests := []struct {
		name     string
		flags    *GranularConnFlags
		env      *EnvVars
		wantHost string
		wantPort int
		wantUser string
		wantDB   string
	}{
		{
			name:     "yaml over defaults",
			flags:    &GranularConnFlags{},
			env:      &EnvVars{},
			wantHost: "yaml-host", wantPort: 6000, wantUser: "yaml-user", wantDB: "yaml-db",
		},
		{
			name:     "env over yaml",
			flags:    &GranularConnFlags{},
			env:      &EnvVars{PGHOST: "env-host", PGPORT: "6001", PGUSER: "env-user", PGDATABASE: "env-db"},
			wantHost: "env-host", wantPort: 6001, wantUser: "env-user", wantDB: "env-db",
		},
		{
			name:     "flags over env",
			flags:    &GranularConnFlags{Host: "flag-host", Port: 6002, Username: "flag-user", Database: "flag-db"},
			env:      &EnvVars{PGHOST: "env-host", PGPORT: "6001", PGUSER: "env-user", PGDATABASE: "env-db"},
			wantHost: "flag-host", wantPort: 6002, wantUser: "flag-user", wantDB: "flag-db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveConnectionParams("", tt.flags, nil, tt.env, project)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.Host)
			assert.Equal(t, tt.wantPort, cfg.Port)
			assert.Equal(t, tt.wantUser, cfg.Username)
			assert.Equal(t, tt.wantDB, cfg.Database)
			assert.Equal(t, "require", cfg.SSLMode)
		})
	}
}

func TestResolveConnectionParams_MySQLEnvironment(t *testing.T) {
	env := &EnvVars{
		PRODMIG_DRIVER: "mariadb",
		MYSQL_HOST:     "legacy-db",
		MYSQL_USER:     "importer",
		MYSQL_PWD:      "pw",
		MYSQL_DATABASE: "shop",
		PGHOST:         "ignored",
	}

	cfg, err := ResolveConnectionParams("", nil, nil, env, nil)
	require.NoError(t, err)

	assert.Equal(t, prodmig.DriverMySQL, cfg.Driver)
	assert.Equal(t, "legacy-db", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, "importer", cfg.Username)
	assert.Equal(t, "pw", cfg.Password)
	assert.Equal(t, "shop", cfg.Database)
	assert.Empty(t, cfg.SSLMode)
}

func TestResolveConnectionParams_SQLiteFromYAML(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{Driver: "sqlite", Database: "products.db"}}

	cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{PGHOST: "ignored"}, project)
	require.NoError(t, err)

	assert.Equal(t, prodmig.DriverSQLite, cfg.Driver)
	assert.Equal(t, "products.db", cfg.Database)
	assert.Empty(t, cfg.Host)
	assert.NoError(t, cfg.Validate())
}

func TestResolveConnectionParams_ConnectionStrings(t *testing.T) {
	t.Run("flag wins over environment", func(t *testing.T) {
		env := &EnvVars{PRODMIG_CONNECTION_STRING: "mysql://a@b/c", DATABASE_URL: "postgresql://x@y/z"}
		cfg, err := ResolveConnectionParams("sqlite:products.db", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, prodmig.DriverSQLite, cfg.Driver)
	})

	t.Run("PRODMIG_CONNECTION_STRING before DATABASE_URL", func(t *testing.T) {
		env := &EnvVars{PRODMIG_CONNECTION_STRING: "mysql://a@b/c", DATABASE_URL: "postgresql://x@y/z"}
		cfg, err := ResolveConnectionParams("", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, prodmig.DriverMySQL, cfg.Driver)
		assert.Equal(t, "b", cfg.Host)
	})

	t.Run("DATABASE_URL ignored when granular flags are set", func(t *testing.T) {
		env := &EnvVars{DATABASE_URL: "postgresql://x@y/z"}
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "flag-host"}, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "flag-host", cfg.Host)
	})

	t.Run("database flag overrides connection string", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("postgresql://u@h/first", &GranularConnFlags{Database: "second"}, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "second", cfg.Database)
	})

	t.Run("ADO.NET takes the resolved driver", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("Host=h;Database=d;", &GranularConnFlags{Driver: "mysql"}, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, prodmig.DriverMySQL, cfg.Driver)
		assert.Equal(t, 3306, cfg.Port)
	})

	t.Run("PGSSLMODE fills in a missing sslmode", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("postgresql://u@h/d", nil, nil, &EnvVars{PGSSLMODE: "verify-full"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "verify-full", cfg.SSLMode)

		cfg, err = ResolveConnectionParams("postgresql://u@h/d?sslmode=disable", nil, nil, &EnvVars{PGSSLMODE: "verify-full"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "disable", cfg.SSLMode)
	})
}

func TestResolveConnectionParams_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		conn    string
		flags   *GranularConnFlags
		cloud   *CloudFlags
		env     *EnvVars
		project *config.ProjectConfig
	}{
		{
			name:  "connection string and granular flags",
			conn:  "postgresql://u@h/d",
			flags: &GranularConnFlags{Host: "other"},
		},
		{
			name:  "explicit driver disagrees with connection string",
			conn:  "mysql://u@h/d",
			flags: &GranularConnFlags{Driver: "postgres"},
		},
		{
			name:  "two cloud providers",
			cloud: &CloudFlags{AWS: true, Google: true},
		},
		{
			name: "bad PGPORT",
			env:  &EnvVars{PGPORT: "five"},
		},
		{
			name:    "bad auth method in yaml",
			project: &config.ProjectConfig{Connection: config.ConnectionConfig{AuthMethod: "kerberos"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveConnectionParams(tt.conn, tt.flags, tt.cloud, tt.env, tt.project)
			require.Error(t, err)
			assert.Equal(t, prodmig.ExitConfigError, prodmig.ExitCodeForError(err))
		})
	}

	t.Run("unknown driver", func(t *testing.T) {
		_, err := ResolveConnectionParams("", &GranularConnFlags{Driver: "oracle"}, nil, nil, nil)
		assert.ErrorIs(t, err, prodmig.ErrUnsupportedDriver)
	})
}

func TestResolveConnectionParams_CloudAuth(t *testing.T) {
	env := &EnvVars{
		AWS_REGION:          "eu-west-1",
		AZURE_TENANT_ID:     "env-tenant",
		AZURE_CLIENT_ID:     "env-client",
		AZURE_CLIENT_SECRET: "secret",
	}

	t.Run("aws region from environment", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, &CloudFlags{AWS: true}, env, nil)
		require.NoError(t, err)
		assert.Equal(t, prodmig.AuthMethodAWSIAM, cfg.AuthMethod)
		assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	})

	t.Run("azure flags override environment", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, &CloudFlags{AzureTenantID: "flag-tenant"}, env, nil)
		require.NoError(t, err)
		assert.Equal(t, prodmig.AuthMethodAzureEntraID, cfg.AuthMethod)
		assert.Equal(t, "flag-tenant", cfg.AzureTenantID)
		assert.Equal(t, "env-client", cfg.AzureClientID)
		assert.Equal(t, "secret", cfg.AzureClientSecret)
	})

	t.Run("azure environment alone keeps standard auth", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, prodmig.AuthMethodStandard, cfg.AuthMethod)
		assert.Empty(t, cfg.AzureClientSecret)
	})

	t.Run("google from yaml", func(t *testing.T) {
		project := &config.ProjectConfig{Connection: config.ConnectionConfig{
			AuthMethod:     "google",
			GoogleInstance: "proj:region:inst",
		}}
		cfg, err := ResolveConnectionParams("", nil, nil, nil, project)
		require.NoError(t, err)
		assert.Equal(t, prodmig.AuthMethodGoogleIAM, cfg.AuthMethod)
		assert.Equal(t, "proj:region:inst", cfg.GoogleInstance)
	})
}
