package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nna-wms/wmsconsole/pkg/config"
	"github.com/nna-wms/wmsconsole/pkg/menu"
)

const menuYAML = `menus:
  - id: "1"
    name: Master
    children:
      - id: "2"
        name: Role
        path: /master_role
      - id: "3"
        name: Stock opname
        path: /stock_opname
  - id: "4"
    name: Uom
    path: /master_uom
    section: settings
`

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		jsonOutput = false
		configFile = ""
		envFiles = []string{".env"}
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, runtime.Version(), v.Go)
	assert.Equal(t, runtime.GOOS, v.OS)
	assert.NotEmpty(t, v.Version)
}

func TestVersion_Text(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wmsconsole ")
	assert.Contains(t, out, runtime.GOARCH)
}

func TestRoutes_Text(t *testing.T) {
	file := writeFile(t, "menus.yaml", menuYAML)

	out, err := execute(t, "routes", file, "--env-file", "")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "routes_text", []byte(out))
}

func TestRoutes_JSON(t *testing.T) {
	file := writeFile(t, "menus.yaml", menuYAML)

	out, err := execute(t, "routes", file, "--json", "--env-file", "")
	require.NoError(t, err)

	var routes []menu.RouteInfo
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	require.Len(t, routes, 5)
	assert.Equal(t, menu.RouteInfo{ID: "/master_role-create", Path: "/master_role/create", Page: "form:Role:create"}, routes[1])
	assert.Equal(t, "placeholder", routes[3].Page)
}

func TestRoutes_NoMenuFile(t *testing.T) {
	_, err := execute(t, "routes", "--env-file", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no menu file")
}

func TestRoutes_MissingFile(t *testing.T) {
	_, err := execute(t, "routes", filepath.Join(t.TempDir(), "absent.yaml"), "--env-file", "")
	assert.True(t, errors.Is(err, menu.ErrFileNotFound))
}

func TestValidate_ReportsSources(t *testing.T) {
	menuFile := writeFile(t, "menus.yaml", menuYAML)
	cfgFile := writeFile(t, "wms.yaml", "listen: \":9090\"\nmenu:\n  file: "+menuFile+"\n")

	out, err := execute(t, "validate", "-c", cfgFile, "--json", "--env-file", "")
	require.NoError(t, err)

	var v ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.True(t, v.Valid)
	assert.Equal(t, config.SourceFile, v.Sources["listen"])
	assert.Equal(t, config.SourceDefault, v.Sources["api.envelope"])
	assert.Equal(t, 3, v.MenuPaths)
}

func TestValidate_Invalid(t *testing.T) {
	cfgFile := writeFile(t, "wms.yaml", "api:\n  base_url: /relative\n")

	out, err := execute(t, "validate", "-c", cfgFile, "--env-file", "")

	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "api.base_url", verr.Field)
	assert.Contains(t, out, "api.base_url")
	assert.NotContains(t, out, "configuration is valid")
}
