package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/salesdash/internal/config"
	"github.com/verte-zerg/salesdash/internal/report"
)

const salesCSV = `Order_Year,Order_Month,Order_Day,quarter,season,SKU,Category,Size,Style,ship-state,Qty,Amount
2021,December,Sunday,Q4,Winter,SET1-S,Set,S,SET1,GOA,1,100.00
2022,April,Saturday,Q2,Spring,JNE1-M,kurta,M,JNE1,DELHI,2,300.00
2022,May,Monday,Q2,Spring,JNE2-L,kurta,L,JNE2,GOA,3,200.00
`

type testEnv struct {
	csv string
	db  string
	cfg string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("NO_COLOR", "1")

	env := testEnv{
		csv: filepath.Join(dir, "sales.csv"),
		db:  filepath.Join(dir, "salesdash.db"),
		cfg: filepath.Join(dir, "config.toml"),
	}
	require.NoError(t, os.WriteFile(env.csv, []byte(salesCSV), 0o644))
	return env
}

func (e testEnv) writeConfig(t *testing.T, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.cfg, []byte(body), 0o644))
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", e.cfg, "--data", e.csv, "--db", e.db))
	err := cmd.Execute()
	return out.String(), err
}

func (e testEnv) document(t *testing.T, args ...string) report.Document {
	t.Helper()
	out, err := e.run(t, append([]string{"report", "--format", "json"}, args...)...)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	return doc
}

func TestReportText(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "report", "--year", "2022", "--width", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Filters: year=2022")
	assert.Contains(t, out, "Analysis By Time")
	assert.Contains(t, out, "$500.00")
	assert.Contains(t, out, "Profit by Month")
}

func TestReportJSONAllPages(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "report", "--all", "--format", "json")
	require.NoError(t, err)

	var docs []report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 4)
	assert.Equal(t, "Products", docs[1].Title)
	assert.Equal(t, 3, docs[0].Summary.Orders)
	assert.NotEmpty(t, docs[2].Breakdown)
}

func TestReportMultiSelectFlags(t *testing.T) {
	env := newTestEnv(t)
	doc := env.document(t, "--month", "April,December")
	assert.Equal(t, 2, doc.Summary.Orders)

	doc = env.document(t, "--month", "April", "--month", "May", "--category", "kurta")
	assert.Equal(t, 2, doc.Summary.Orders)
	assert.Equal(t, "$500.00", doc.Summary.AmountText)
}

func TestReportChart(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "report", "--page", "state", "--chart", "top-state-orders", "--format", "json")
	require.NoError(t, err)

	var chart report.ChartDoc
	require.NoError(t, json.Unmarshal([]byte(out), &chart))
	require.Len(t, chart.Groups, 2)
	assert.Equal(t, "GOA", chart.Groups[0].Key)
	assert.Equal(t, 2, chart.Groups[0].Count)

	_, err = env.run(t, "report", "--chart", "missing")
	assert.Error(t, err)
}

func TestConfigFiltersAndFlagOverride(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(t, "[filters]\nyear = 2021\n\n[dashboard]\npage = \"state\"\n")

	doc := env.document(t)
	assert.Equal(t, "state", string(doc.Page))
	assert.Equal(t, 1, doc.Summary.Orders)

	doc = env.document(t, "--year", "2022", "--page", "time")
	assert.Equal(t, "time", string(doc.Page))
	assert.Equal(t, 2, doc.Summary.Orders)
}

func TestInvalidInputs(t *testing.T) {
	env := newTestEnv(t)
	for _, args := range [][]string{
		{"report", "--page", "inventory"},
		{"report", "--source", "parquet"},
		{"report", "--format", "yaml"},
		{"report", "--year", "twenty"},
		{"report", "--log-level", "loud"},
		{"values", "colour"},
	} {
		_, err := env.run(t, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestUnknownConfigKey(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(t, "[data]\nformat = \"xlsx\"\n")
	_, err := env.run(t, "report")
	assert.ErrorContains(t, err, "unknown config keys")
}

func TestMissingExport(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Remove(env.csv))
	_, err := env.run(t, "report")
	assert.ErrorContains(t, err, "failed to open sales export")
}

func TestValues(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "values", "month")
	require.NoError(t, err)
	assert.Equal(t, "April\nMay\nDecember\n", out)
}

func TestImportAndDatabaseSource(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "import", env.csv)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 records")

	doc := env.document(t, "--source", "db", "--season", "Spring")
	assert.Equal(t, 2, doc.Summary.Orders)

	out, err = env.run(t, "import", env.csv, "--replace")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 records")

	out, err = env.run(t, "imports")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "rows"), "replace drops the earlier import")
	assert.Contains(t, out, "3 records stored")
}

func TestViewsLifecycle(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "views", "save", "q2", "--quarter", "Q2")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved view "q2": quarter=Q2`)

	out, err = env.run(t, "views", "list")
	require.NoError(t, err)
	assert.Equal(t, "q2\tquarter=Q2\n", out)

	doc := env.document(t, "--view", "q2")
	assert.Equal(t, 2, doc.Summary.Orders)

	doc = env.document(t, "--view", "q2", "--quarter", "Q4")
	assert.Equal(t, 1, doc.Summary.Orders)

	_, err = env.run(t, "views", "delete", "q2")
	require.NoError(t, err)
	_, err = env.run(t, "views", "delete", "q2")
	assert.ErrorContains(t, err, "no saved view")

	_, err = env.run(t, "report", "--view", "q2")
	assert.Error(t, err)
}

func TestViewsSaveRequiresFilters(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "views", "save", "everything")
	assert.ErrorContains(t, err, "no filters to save")
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Data.Path)

	var kept []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		line = strings.TrimPrefix(line, "# ")
		if !strings.HasPrefix(line, "[") && !strings.Contains(line, "=") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = line[:i]
		}
		kept = append(kept, line)
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o644))
	cfg, err = config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Filters.Year)
	assert.Equal(t, 2022, *cfg.Filters.Year)
	require.NotNil(t, cfg.Server.Addr)
	assert.Equal(t, defaultAddr, *cfg.Server.Addr)
}

func TestSampleFeedsReport(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "sample.csv")
	out, err := env.run(t, "sample", path, "--rows", "120", "--seed", "42", "--missing", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 120 records")

	_, err = env.run(t, "sample", path)
	assert.ErrorContains(t, err, "already exists")

	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"report", "--format", "json", "--config", env.cfg, "--data", path, "--db", env.db})
	require.NoError(t, cmd.Execute())
	var doc report.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 120, doc.Summary.Orders)
	assert.True(t, doc.Summary.Amount.IsPositive())
}
