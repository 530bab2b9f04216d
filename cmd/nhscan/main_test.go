package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const flaggedRow = "10.0.1.9:1234 10.0.1.20:5678 6 1234 5678 nh 0x3"

// writeDump creates dir/name with the given lines
func writeDump(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// writeScenario creates the two-controller directory used by most tests
func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDump(t, dir, "a.log",
		"Interface                  IP Address / IP Netmask        Admin   Protocol",
		"vlan 1                     unassigned / unassigned        up      up",
		"vlan 10                    10.0.1.1 / 255.255.255.0       up      up",
		"",
		"Datapath Session Table Entries",
		"Source IP     Destination IP  Prot SPort DPort  Flags",
		"  "+flaggedRow+"  ",
		"10.0.1.9:1234 8.8.8.8:53 17 1234 53 nh 0x3",
	)
	writeDump(t, dir, "b.log",
		"vlan 10 10.0.2.1 / 255.255.255.0 up up",
		"10.0.2.9:1234 8.8.8.8:53 17 1234 53 nh 0x3",
	)
	writeDump(t, dir, "notes.txt",
		"vlan 10 10.0.3.1",
		"10.0.3.1:1 10.0.3.2:2 nh 0x3",
	)
	return dir
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Cache = false
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	dir := writeScenario(t)
	var stdout bytes.Buffer

	affected, err := run(testConfig(), dir, Options{}, &stdout, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	want := "\n***** FILE a.log, IP INTERFACES: 10.0.1. *****\n" +
		"  " + flaggedRow + "\n" +
		"\n1 CONTROLLERS AFFECTED\n"
	assert.Equal(t, want, stdout.String())
}

func TestRunNoFiles(t *testing.T) {
	var stdout bytes.Buffer

	affected, err := run(testConfig(), t.TempDir(), Options{}, &stdout, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Equal(t, "\n0 CONTROLLERS AFFECTED\n", stdout.String())
}

func TestRunMissingDirectory(t *testing.T) {
	var stdout bytes.Buffer

	_, err := run(testConfig(), filepath.Join(t.TempDir(), "out"), Options{}, &stdout, zaptest.NewLogger(t).Sugar())
	require.ErrorIs(t, err, ErrNoDirectory)
	assert.Empty(t, stdout.String())
}

func TestRunMalformedLine(t *testing.T) {
	dir := writeScenario(t)
	writeDump(t, dir, "c.log",
		"vlan 10",
		"vlan 20 10.0.5.1",
		"10.0.5.2:1 10.0.5.3:2 nh 0x1",
	)
	log := zaptest.NewLogger(t).Sugar()

	t.Run("skip", func(t *testing.T) {
		var stdout bytes.Buffer
		affected, err := run(testConfig(), dir, Options{}, &stdout, log)
		require.NoError(t, err)
		assert.Equal(t, 2, affected)
		assert.Contains(t, stdout.String(), "***** FILE c.log, IP INTERFACES: 10.0.5. *****")
	})

	t.Run("strict", func(t *testing.T) {
		cfg := testConfig()
		cfg.Strict = true
		var stdout bytes.Buffer
		_, err := run(cfg, dir, Options{}, &stdout, log)
		require.ErrorIs(t, err, ErrMalformedLine)
		assert.Contains(t, err.Error(), "c.log:1")
		assert.Empty(t, stdout.String())
	})
}

func TestRunJSONAndBaseline(t *testing.T) {
	dir := writeScenario(t)
	log := zaptest.NewLogger(t).Sugar()
	jsonPath := filepath.Join(t.TempDir(), "reports", "first.json")

	var stdout bytes.Buffer
	_, err := run(testConfig(), dir, Options{JSONPath: jsonPath}, &stdout, log)
	require.NoError(t, err)

	report, err := ReadJSONResults(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "nexthop", report.Signature)
	assert.Equal(t, 2, report.TotalFiles)
	assert.Equal(t, 1, report.Affected)
	require.Len(t, report.Files, 2)
	assert.Equal(t, "a.log", report.Files[0].Filename)
	require.Len(t, report.Files[0].Rows, 1)
	assert.Equal(t, 7, report.Files[0].Rows[0].Line)
	assert.Equal(t, flaggedRow, report.Files[0].Rows[0].Row)

	// b.log becomes affected, a.log is fixed
	writeDump(t, dir, "a.log", "vlan 10 10.0.1.1", "10.0.1.9:1234 8.8.8.8:53 nh 0x3")
	writeDump(t, dir, "b.log", "vlan 10 10.0.2.1", "10.0.2.9:1 10.0.2.10:2 nh 0x3")

	stdout.Reset()
	affected, err := run(testConfig(), dir, Options{BaselinePath: jsonPath}, &stdout, log)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	out := stdout.String()
	assert.Contains(t, out, "Compared with "+jsonPath)
	assert.Contains(t, out, "1 newly affected:\n    b.log\n")
	assert.Contains(t, out, "1 no longer affected:\n    a.log\n")
	assert.True(t, strings.HasSuffix(out, "\n1 CONTROLLERS AFFECTED\n"))
}

func TestRunMissingBaseline(t *testing.T) {
	dir := writeScenario(t)
	var stdout bytes.Buffer

	_, err := run(testConfig(), dir, Options{BaselinePath: filepath.Join(dir, "nope.json")}, &stdout, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)
	assert.Empty(t, stdout.String())
}

func TestRunIgnoredRows(t *testing.T) {
	dir := writeScenario(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, stateDir), 0o755))
	ignore := `{"description": "acknowledged", "ignored": ["` + NewFlaggedRow(0, flaggedRow, "", "").HashString() + `"]}`
	require.NoError(t, os.WriteFile(ignorePath(dir), []byte(ignore), 0o644))

	var stdout bytes.Buffer
	affected, err := run(testConfig(), dir, Options{}, &stdout, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Equal(t, "\n0 CONTROLLERS AFFECTED\n", stdout.String())
}

func TestCmdConfigPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nhscan.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("suffix: .txt\nworkers: 2\nstrict: true\n"), 0o644))

	m := Cmd{ConfigPath: cfgPath, Suffix: ".dump", Workers: 8, NoCache: true}
	changed := func(name string) bool { return name == "workers" || name == "no-cache" }

	cfg, err := m.config(changed)
	require.NoError(t, err)
	assert.Equal(t, ".txt", cfg.Suffix)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Strict)
	assert.False(t, cfg.Cache)
}

func TestRootCommandExitCode(t *testing.T) {
	dir := writeScenario(t)
	var stdout bytes.Buffer

	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{dir, "--no-cache", "--exit-code"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cmd = Cmd{}
	})

	err := rootCmd.Execute()
	var status ExitStatus
	require.ErrorAs(t, err, &status)
	assert.Equal(t, ExitStatus(2), status)
	assert.Contains(t, stdout.String(), "1 CONTROLLERS AFFECTED")
}

func TestSignaturesCommand(t *testing.T) {
	var stdout bytes.Buffer

	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"signatures"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "nexthop "))
	assert.True(t, strings.HasPrefix(lines[1], "uplink "))
}
