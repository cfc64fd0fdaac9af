package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/promotion"
	"github.com/ohkbilal/certa/internal/seal"
	"github.com/ohkbilal/certa/internal/transport"
)

const (
	goldenFixture   = "../../internal/golden/testdata/golden.json"
	materialFixture = "../../internal/golden/testdata/materials.json"
	smokeFixture    = "../../internal/golden/testdata/smoke.yaml"
)

// testConfig writes a config pointing at a fresh sqlite file and returns
// its path.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`database:
  driver: sqlite
  dsn: %s
logging:
  level: error
golden:
  fixtures:
    - %s
    - %s
  workers: 2
`, filepath.Join(dir, "certa.db"), goldenFixture, materialFixture)
	path := filepath.Join(dir, "certa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAssessJSON(t *testing.T) {
	out, err := execute(t, testConfig(t), "assess", "--json",
		"--fluid", "hf-48", "--temp", "25", "-m", "carbon-steel", "-m", "ptfe")
	require.NoError(t, err)

	var res transport.AssessResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Output.Context.Valid)
	assert.Equal(t, seal.SeallessRequired, res.Output.Seal.State)
	require.Len(t, res.Output.Materials, 2)
	assert.Equal(t, material.Fail, res.Output.Materials[0].Status)
	assert.Len(t, res.FAOHash, 64)

	want, err := res.Output.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, res.FAOHash)
}

func TestAssessWithoutTemperatureFailsClosed(t *testing.T) {
	out, err := execute(t, testConfig(t), "assess", "--json", "--fluid", "water", "-m", "pvc")
	require.NoError(t, err)

	var res transport.AssessResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Output.Context.Valid)
	assert.Equal(t, seal.Suppressed, res.Output.Seal.State)
	assert.Equal(t, material.InsufficientData, res.Output.Materials[0].Status)
}

func TestAssessNonFiniteTemperatureFailsClosed(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{
		{"--temp", "1e308", "--unit", "F"},
		{"--temp", "NaN"},
		{"--temp", "-Inf", "--unit", "F"},
	} {
		out, err := execute(t, cfg, append([]string{"assess", "--json", "--record", "--fluid", "water", "-m", "titanium"}, args...)...)
		require.NoError(t, err, args)

		var res transport.AssessResult
		require.NoError(t, json.Unmarshal([]byte(out), &res), args)
		assert.False(t, res.Output.Context.Valid, args)
		assert.Equal(t, seal.Suppressed, res.Output.Seal.State, args)
		assert.Equal(t, material.InsufficientData, res.Output.Materials[0].Status, args)
		assert.Len(t, res.FAOHash, 64, args)
	}

	out, err := execute(t, cfg, "inspect", "runs", "--json")
	require.NoError(t, err)
	var recs []audit.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 3)
}

func TestAssessTableShowsRuleAndCounts(t *testing.T) {
	out, err := execute(t, testConfig(t), "assess", "--fluid", "hf-48", "--temp", "25", "-m", "316ss", "-m", "304ss", "-m", "ptfe")
	require.NoError(t, err)
	assert.Contains(t, out, "fluoride")
	assert.Contains(t, out, "2 FAIL, 1 CONDITIONAL")
}

func TestAssessTableOutput(t *testing.T) {
	out, err := execute(t, testConfig(t), "assess", "--fluid", "water", "--temp", "77", "--unit", "F", "-m", "pvc")
	require.NoError(t, err)
	assert.Contains(t, out, "Run context")
	assert.Contains(t, out, "COMPATIBLE")
	assert.Contains(t, out, "FAO hash:")
}

func TestAssessRecordThenInspect(t *testing.T) {
	cfg := testConfig(t)
	out, err := execute(t, cfg, "assess", "--json", "--record", "--fluid", "hno3-70", "--temp", "40", "-m", "titanium")
	require.NoError(t, err)
	var res transport.AssessResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	runID := res.Output.Context.RunID

	out, err = execute(t, cfg, "inspect", "runs", "--json")
	require.NoError(t, err)
	var recs []audit.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, runID, recs[0].RunID)
	assert.Equal(t, res.FAOHash, recs[0].FAOHash)

	out, err = execute(t, cfg, "inspect", "run", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "hno3-70")
	assert.Contains(t, out, "COMPATIBLE")

	_, err = execute(t, cfg, "inspect", "run", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not recorded")
}

func TestArchiveRequiresEndpoint(t *testing.T) {
	_, err := execute(t, testConfig(t), "assess", "--archive", "--fluid", "water", "--temp", "25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive.endpoint")
}

func TestGoldenSmoke(t *testing.T) {
	out, err := execute(t, testConfig(t), "golden", "-f", smokeFixture)
	require.NoError(t, err)
	assert.Contains(t, out, "PASSED:")
}

func TestGoldenFailureBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`description: wrong expectation
cases:
  - id: W-1
    name: water is not hazardous
    kind: assessment
    input: {fluid_id: water, temperature: 25, unit: C, material: pvc}
    expect: {valid: true, status: FAIL}
`), 0o600))

	out, err := execute(t, testConfig(t), "golden", "-f", path)
	require.ErrorIs(t, err, errGateFailed)
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, out, "BLOCKED: 1/1")
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(fmt.Errorf("serve: %w", errGateFailed)))
}

func TestInspectMaterialsFilter(t *testing.T) {
	out, err := execute(t, testConfig(t), "inspect", "materials", "--json", "--status", "PROVISIONAL")
	require.NoError(t, err)
	var ms []material.Material
	require.NoError(t, json.Unmarshal([]byte(out), &ms))
	require.Len(t, ms, 10)
	for _, m := range ms {
		assert.Equal(t, material.Provisional, m.Status)
	}
}

func TestExportRecordedRuns(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{
		{"--fluid", "water", "--temp", "25", "-m", "pvc", "-m", "epdm"},
		{"--fluid", "naoh-50", "--temp", "40", "-m", "titanium"},
	} {
		_, err := execute(t, cfg, append([]string{"assess", "--record"}, args...)...)
		require.NoError(t, err)
	}

	fixture := filepath.Join(t.TempDir(), "exported.json")
	out, err := execute(t, cfg, "export", "--out", fixture)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 cases")

	// The exported fixture replays cleanly through the gate.
	_, err = execute(t, cfg, "golden", "-f", fixture)
	require.NoError(t, err)
}

func TestPromoteDryRun(t *testing.T) {
	out, err := execute(t, testConfig(t), "promote", "--dry-run", "--json", "-m", "monel-400", "-m", "ptfe")
	require.NoError(t, err)

	var reports []promotion.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Eligible, reports[0].Reason)
	assert.False(t, reports[1].Eligible)
}

func TestPromoteWritesCertificate(t *testing.T) {
	cfg := testConfig(t)
	certDir := t.TempDir()
	out, err := execute(t, cfg, "promote", "-m", "inconel-625", "-m", "titanium", "--out", certDir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 materials promoted")

	path := filepath.Join(certDir, "Inconel-625.cert.json")
	cert, err := promotion.LoadCertificate(path)
	require.NoError(t, err)
	assert.Equal(t, material.Verified, cert.ToStatus)

	out, err = execute(t, cfg, "inspect", "certificate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, err = execute(t, cfg, "inspect", "promotions", "--json")
	require.NoError(t, err)
	var entries []audit.PromotionEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "promoted", entries[0].Decision)
	assert.Equal(t, cert.Signature.Hash, entries[0].Signature)
	assert.Equal(t, "rejected", entries[1].Decision)
}
