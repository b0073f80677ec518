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

	"github.com/cxd309/reflex-engine/internal/arc"
	"github.com/cxd309/reflex-engine/internal/engine"
	"github.com/cxd309/reflex-engine/internal/impulse"
	"github.com/cxd309/reflex-engine/internal/latency"
)

// isolateHome points HOME and the working directory at a temp dir so no
// user config or .env file leaks into the test.
func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, k := range []string{
		"REFLEXARC_SPEED", "REFLEXARC_DELAY1", "REFLEXARC_DELAY2",
		"REFLEXARC_TIME_STEP", "REFLEXARC_RUN_TIME", "REFLEXARC_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "predict", "simulate", "config", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
	for _, flag := range []string{"config", "log-level", "json"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing persistent flag %q", flag)
	}
}

func TestVersionCmd(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "reflexarc version "+version+"\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, version, got["version"])
}

func TestRunCmd_Timeline(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "run")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Reflex timeline (trial 1) ===")
	assert.Contains(t, out, impulse.EventStimulus)
	assert.Contains(t, out, impulse.EventContraction)
	assert.Contains(t, out, "Total latency:")
}

func TestRunCmd_JSONTrials(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "run", "--trials", "3", "--json")
	require.NoError(t, err)

	var trials []impulse.Trial
	require.NoError(t, json.Unmarshal([]byte(out), &trials))
	require.Len(t, trials, 3)
	for i, trial := range trials {
		assert.Equal(t, i+1, trial.Number)
		assert.Len(t, trial.Events, 6)
		assert.InDelta(t, trial.PredictedMs, trial.MeasuredMs, 1000.0/60)
	}
	assert.NotEqual(t, trials[0].ID, trials[1].ID)
}

func TestRunCmd_FlagOverrides(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "run", "--json", "--speed", "600", "--delay1", "0", "--delay2", "0", "--dt", "0.001")
	require.NoError(t, err)

	var trials []impulse.Trial
	require.NoError(t, json.Unmarshal([]byte(out), &trials))
	require.Len(t, trials, 1)
	want := latency.PredictedMs(arc.Default().TotalLength(), 600, 0, 0)
	assert.InDelta(t, want, trials[0].PredictedMs, 1e-9)
	assert.InDelta(t, want, trials[0].MeasuredMs, 1.0)
}

func TestRunCmd_InvalidFlags(t *testing.T) {
	isolateHome(t)

	tests := []struct {
		name string
		args []string
	}{
		{"zero trials", []string{"run", "--trials", "0"}},
		{"negative dt", []string{"run", "--dt", "-1"}},
		{"zero speed", []string{"run", "--speed", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestPredictCmd(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "predict", "--json")
	require.NoError(t, err)

	var p prediction
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	total := arc.Default().TotalLength()
	assert.InDelta(t, total, p.TotalLength, 1e-9)
	assert.InDelta(t, latency.PredictedMs(total, 300, 0.003, 0.003), p.PredictedMs, 1e-9)
	assert.InDelta(t, 0.1, p.SpeedMPS, 1e-12)

	out, err = execute(t, "predict")
	require.NoError(t, err)
	assert.Contains(t, out, "Predicted reflex time:")
}

func TestPredictCmd_UsesConfigFile(t *testing.T) {
	dir := isolateHome(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("impulse:\n  speed: 600\n  delay1: 0\n  delay2: 0\n"), 0600))

	out, err := execute(t, "predict", "--json", "--config", path)
	require.NoError(t, err)

	var p prediction
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, 600.0, p.Speed)
	assert.InDelta(t, arc.Default().TotalLength()/600*1000, p.PredictedMs, 1e-9)
}

func TestSimulateCmd_File(t *testing.T) {
	dir := isolateHome(t)
	input := engine.SimulationInput{
		Meta:     engine.SimulationMeta{SimulationID: "cli", RunTime: 4, TimeStep: 1.0 / 60},
		Commands: []engine.Command{{At: 0, Action: engine.ActionStart}},
	}
	data, err := json.Marshal(input)
	require.NoError(t, err)
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	out, err := execute(t, "simulate", path)
	require.NoError(t, err)

	var log engine.SimulationLog
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	assert.Equal(t, "cli", log.Meta.SimulationID)
	assert.Len(t, log.Trials, 1)
}

func TestSimulateCmd_Errors(t *testing.T) {
	dir := isolateHome(t)

	_, err := execute(t, "simulate", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "error reading input")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0600))
	_, err = execute(t, "simulate", bad)
	assert.ErrorContains(t, err, "simulation error")
}

func TestConfigCmd(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "impulse:"))
	assert.Contains(t, out, "speed: 300")
	assert.Contains(t, out, "level: info")

	out, err = execute(t, "config", "--json", "--log-level", "debug")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "debug", got["logging"].(map[string]any)["level"])
}

func TestPredictCmd_RejectsNaNDelay(t *testing.T) {
	isolateHome(t)
	t.Setenv("REFLEXARC_DELAY1", "NaN")

	out, err := execute(t, "predict")
	assert.ErrorContains(t, err, "invalid configuration")
	assert.NotContains(t, out, "NaN")
}

func TestConfigCmd_BadLogLevel(t *testing.T) {
	isolateHome(t)

	_, err := execute(t, "config", "--log-level", "verbose")
	assert.ErrorContains(t, err, "invalid configuration")
}
