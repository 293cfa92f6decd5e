package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `input: dumps/products.sql
table: catalog.products
encodings:
  - utf-8
  - cp1252
timeout: 5m

connection:
  driver: mysql
  host: myhost
  port: 3307
  username: myuser
  database: shop
  sslmode: require
  auth_method: standard
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "dumps/products.sql", cfg.Input)
	assert.Equal(t, "catalog.products", cfg.Table)
	assert.Equal(t, []string{"utf-8", "cp1252"}, cfg.Encodings)
	assert.Equal(t, "mysql", cfg.Connection.Driver)
	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 3307, cfg.Connection.Port)
	assert.Equal(t, "myuser", cfg.Connection.Username)
	assert.Equal(t, "shop", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "standard", cfg.Connection.AuthMethod)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, timeout)
}

func TestLoad_CloudFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: db.example.com
  database: shop
  auth_method: azure
  azure_tenant_id: tenant
  azure_client_id: client
  aws_region: eu-west-1
  google_instance: proj:region:inst
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "azure", cfg.Connection.AuthMethod)
	assert.Equal(t, "tenant", cfg.Connection.AzureTenantID)
	assert.Equal(t, "client", cfg.Connection.AzureClientID)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)
	assert.Equal(t, "proj:region:inst", cfg.Connection.GoogleInstance)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("table: items\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "items", cfg.Table)
	assert.Equal(t, "", cfg.Connection.Host)
	assert.Equal(t, 0, cfg.Connection.Port)
	assert.Empty(t, cfg.Encodings)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestTimeoutDuration_Invalid(t *testing.T) {
	cfg := &ProjectConfig{Timeout: "soon"}
	_, err := cfg.TimeoutDuration()
	assert.ErrorIs(t, err, prodmig.ErrInvalidConfig)
}

func TestTimeoutDuration_NilConfig(t *testing.T) {
	var cfg *ProjectConfig
	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}
