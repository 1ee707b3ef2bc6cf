package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds a root command tree identical to main() but with
// PersistentPreRun stubbed out so the API client is never initialised.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "flowgraph",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Skip client initialisation in tests.
		},
	}
	root.PersistentFlags().StringVar(&flagURL, "url", defaultServerURL, "")
	root.PersistentFlags().StringVar(&flagFmt, "format", "json", "")

	root.AddCommand(newToolCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newCommunityCmd())
	return root
}

// --- tool ---

func TestToolGetArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing id", []string{"tool", "get"}},
		{"too many args", []string{"tool", "get", "bwa", "extra"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newTestRoot()
			if err := executeArgs(t, root, tc.args...); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestToolListRejectsPositionalArgs(t *testing.T) {
	root := newTestRoot()
	if err := executeArgs(t, root, "tool", "list", "unexpected"); err == nil {
		t.Error("tool list should reject positional args")
	}
}

func TestToolListFlagDefaults(t *testing.T) {
	cmd := toolListCmd()
	f := cmd.Flags().Lookup("limit")
	if f == nil {
		t.Fatal("--limit flag not found on tool list")
	}
	if f.DefValue != "0" {
		t.Errorf("--limit default: got %q, want %q", f.DefValue, "0")
	}
}

// --- graph ---

func TestGraphNeighborsArgValidation(t *testing.T) {
	argsValidator := cobra.ExactArgs(1)
	if err := argsValidator(nil, []string{"bwa"}); err != nil {
		t.Errorf("one arg should be valid: %v", err)
	}
	if err := argsValidator(nil, []string{}); err == nil {
		t.Error("zero args should fail ExactArgs(1)")
	}
	if err := argsValidator(nil, []string{"a", "b"}); err == nil {
		t.Error("two args should fail ExactArgs(1)")
	}
}

func TestGraphStatsRejectsArgs(t *testing.T) {
	root := newTestRoot()
	if err := executeArgs(t, root, "graph", "stats", "extra"); err == nil {
		t.Error("graph stats should reject positional args")
	}
}

// --- run ---

func TestRunGetArgValidation(t *testing.T) {
	root := newTestRoot()
	if err := executeArgs(t, root, "run", "get"); err == nil {
		t.Error("run get without an ID should fail")
	}
	if err := executeArgs(t, root, "run", "get", "a", "b"); err == nil {
		t.Error("run get with two IDs should fail")
	}
}

func TestRunTriggerFlagDefaults(t *testing.T) {
	cmd := runTriggerCmd()

	cases := []struct {
		flag string
		want string
	}{
		{"wait", "false"},
		{"timeout", "30m0s"},
	}
	for _, tc := range cases {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("--%s flag not found", tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("--%s default: got %q, want %q", tc.flag, f.DefValue, tc.want)
		}
	}
}

func TestRunListFlagDefaults(t *testing.T) {
	cmd := runListCmd()
	f := cmd.Flags().Lookup("limit")
	if f == nil {
		t.Fatal("--limit flag not found on run list")
	}
	if f.DefValue != "0" {
		t.Errorf("--limit default: got %q, want %q", f.DefValue, "0")
	}
}

// --- community ---

func TestCommunityGetArgValidation(t *testing.T) {
	argsValidator := cobra.ExactArgs(3)

	cases := []struct {
		args    []string
		wantErr bool
	}{
		{[]string{"run-id", "0", "1"}, false},
		{[]string{"run-id", "0"}, true},
		{[]string{"run-id"}, true},
		{[]string{}, true},
		{[]string{"a", "b", "c", "d"}, true},
	}
	for _, tc := range cases {
		err := argsValidator(nil, tc.args)
		if tc.wantErr && err == nil {
			t.Errorf("args %v: expected error", tc.args)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("args %v: unexpected error: %v", tc.args, err)
		}
	}
}

func TestCommunityListFlagDefaults(t *testing.T) {
	cmd := communityListCmd()

	cases := []struct {
		flag string
		want string
	}{
		{"run", ""},
		{"level", "0"},
	}
	for _, tc := range cases {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("--%s flag not found", tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("--%s default: got %q, want %q", tc.flag, f.DefValue, tc.want)
		}
	}
}

// --- detect ---

func TestDetectFlagDefaults(t *testing.T) {
	cmd := newDetectCmd()

	cases := []struct {
		flag string
		want string
	}{
		{"increment", "1"},
		{"resolution", "1"},
		{"max-passes", "10"},
		{"max-levels", "10"},
	}
	for _, tc := range cases {
		f := cmd.Flags().Lookup(tc.flag)
		if f == nil {
			t.Errorf("--%s flag not found on detect", tc.flag)
			continue
		}
		if f.DefValue != tc.want {
			t.Errorf("--%s default: got %q, want %q", tc.flag, f.DefValue, tc.want)
		}
	}
}

// --- global format flag ---

func TestFormatFlagDefault(t *testing.T) {
	root := newTestRoot()
	f := root.PersistentFlags().Lookup("format")
	if f == nil {
		t.Fatal("--format flag not found")
	}
	if f.DefValue != "json" {
		t.Errorf("default format: got %q, want %q", f.DefValue, "json")
	}
}

// TestFormatFlagValues verifies that accepted format values are "json",
// "table", and "quiet" — the only strings the output functions branch on.
func TestFormatFlagValues(t *testing.T) {
	resetFlags(t)
	for _, format := range []string{"json", "table", "quiet"} {
		flagFmt = format
		// output() must not panic for any of these values.
		captureStdout(t, func() { output(map[string]string{"k": "v"}, "id") })
	}
}
