package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowgraphai/flowgraph/client"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Build-time variables set via ldflags.
var (
	version   = "0.3.0"
	commit    = ""
	buildDate = ""
)

const defaultServerURL = "http://localhost:3030"

var (
	apiClient *client.Client
	flagURL   string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("flowgraph version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("flowgraph version %s-dev", version)
}

// profileConfig holds connection settings for a single profile.
type profileConfig struct {
	URL string `yaml:"url"`
}

// configFile is the top-level config file structure. The flat url key is
// the legacy format; profiles take precedence when present.
type configFile struct {
	URL           string                   `yaml:"url"`
	Profiles      map[string]profileConfig `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "flowgraph",
		Short:   "Flowgraph CLI — workflow tool co-occurrence graphs and communities",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL)
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultServerURL, "Flowgraph server URL (env: FLOWGRAPH_URL)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup
	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup
	extractCmd := newExtractCmd()
	extractCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // talks to Galaxy, not the server
	detectCmd := newDetectCmd()
	detectCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // fully offline

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newToolCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCommunityCmd())
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultServerURL {
		if v := os.Getenv("FLOWGRAPH_URL"); v != "" {
			flagURL = v
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	cfgPath := filepath.Join(home, ".flowgraph", "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return
	}

	resolvedURL := cfg.URL
	if cfg.Profiles != nil {
		profileName := cfg.ActiveProfile
		if profileName == "" {
			profileName = "default"
		}
		if p, ok := cfg.Profiles[profileName]; ok && p.URL != "" {
			resolvedURL = p.URL
		}
	}
	if flagURL == defaultServerURL && resolvedURL != "" {
		flagURL = resolvedURL
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
