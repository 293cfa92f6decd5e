package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// isolateEnv clears every variable the resolvers read and moves the test into
// an empty working directory, so no .env or prodmig.yaml leaks in.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"PRODMIG_INPUT", "PRODMIG_DRIVER", "PRODMIG_CONNECTION_STRING", "DATABASE_URL",
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
		"MYSQL_HOST", "MYSQL_PORT", "MYSQL_USER", "MYSQL_PWD", "MYSQL_DATABASE",
		"AWS_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
		"PRODMIG_NON_INTERACTIVE", "CI", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
	return path
}

func newTestMigrateCmd(flags *migrateFlagValues) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "migrate"}
	cmd.Flags().BoolP("verbose", "v", false, "")
	registerMigrateFlags(cmd, flags)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func newTestExtractCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "extract"}
	cmd.Flags().BoolP("verbose", "v", false, "")

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

const sampleDump = `-- legacy export
INSERT INTO legacy_products VALUES
('1','R-1','SKU-1','T','Widget',9.50,12.00,NULL),
('2','R-2','SKU-2','T','O''Brien''s Gadget',1,2,'x','y'),
('3','R-3','SKU-3','T','Broken',abc,1,NULL),
('4','R-4','SKU-1','T','Widget v2',9.50,15.00,NULL);
`
