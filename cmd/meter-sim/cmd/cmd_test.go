package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flags to prevent accumulation between tests
	verbose, render, scale = false, false, 1
	showRel, showDB, showHV, showCycles = false, false, false, 1

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestShow(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "plain",
			args:        []string{"show", "12.3"},
			wantContain: []string{"value=12.3", "relative=off", "status=-"},
		},
		{
			name:        "negative",
			args:        []string{"show", "--", "-19.87"},
			wantContain: []string{"value=-19.87", "status=neg"},
		},
		{
			name:        "plus sign",
			args:        []string{"show", "+0.005"},
			wantContain: []string{"value=0.005", "status=neg|pos"},
		},
		{
			name:        "half digit with hv",
			args:        []string{"show", "--hv", "19999"},
			wantContain: []string{"value=19999", "status=one|hv"},
		},
		{
			name:        "verbose",
			args:        []string{"show", "-v", "--cycles", "3", "1.000"},
			wantContain: []string{"edges=15", "conversions=3"},
		},
		{
			name:    "bad display",
			args:    []string{"show", "12x"},
			wantErr: true,
		},
		{
			name:    "missing arg",
			args:    []string{"show"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err, out)
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestShowRender(t *testing.T) {
	out, err := execute(t, "show", "--render", "8.8")
	require.NoError(t, err)
	assert.Contains(t, out, "####")
}

func TestReplay(t *testing.T) {
	out, err := execute(t, "replay", filepath.Join("..", "..", "..", "sim", "testdata", "relative.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "scenario lead-offset: 6 steps")
	assert.Contains(t, out, "relative=0.35")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "ok"))
}

func TestReplayFailsExpectation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - show: "4.0"
    expect: {value: 5}
`), 0o644))

	_, err := execute(t, "replay", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value 4, want 5")
}

func TestReplayMissingFile(t *testing.T) {
	_, err := execute(t, "replay", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReplayRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - show: \"1.0\"\n"), 0o644))

	out, err := execute(t, "replay", "--render", "--scale", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "##")
}
