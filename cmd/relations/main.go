// Command relations runs the relationship collection server and talks to it.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/relations/client"
	"github.com/persistorai/relations/internal/config"
)

const defaultURL = "http://localhost:3040"

var (
	apiClient *client.Client
	flagURL   string
	flagFmt   string
)

type configFile struct {
	URL           string                   `yaml:"url"`
	Format        string                   `yaml:"format"`
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL string `yaml:"url"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "relations",
		Short:   "Lazy relationship collections over a graph store",
		Version: config.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			resolveConfig(cmd)
			apiClient = client.New(flagURL, client.WithUserAgent("relations-cli/"+config.Version))
		},
		SilenceUsage: true,
	}
	root.SetVersionTemplate("relations version {{.Version}}\n")

	root.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "Server URL (env: RELATIONS_URL)")
	root.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	// Server-side commands read the environment, not the client config.
	skipClient := func(*cobra.Command, []string) {}

	serve := newServeCmd()
	serve.PersistentPreRun = skipClient
	migrate := newMigrateCmd()
	migrate.PersistentPreRun = skipClient

	root.AddCommand(serve, migrate, newNodeCmd(), newRelCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig fills flags left at their defaults: an explicit flag wins,
// then the environment, then ~/.relations/config.yaml.
func resolveConfig(cmd *cobra.Command) {
	urlSet := cmd.Flags().Changed("url")
	fmtSet := cmd.Flags().Changed("format")

	if !urlSet {
		if v := os.Getenv("RELATIONS_URL"); v != "" {
			flagURL = v
			urlSet = true
		}
	}

	cfg, err := readConfigFile()
	if err != nil || cfg == nil {
		return
	}

	resolvedURL := cfg.URL
	if cfg.Profiles != nil {
		name := cfg.ActiveProfile
		if name == "" {
			name = "default"
		}
		if p, ok := cfg.Profiles[name]; ok && p.URL != "" {
			resolvedURL = p.URL
		}
	}

	if !urlSet && resolvedURL != "" {
		flagURL = resolvedURL
	}
	if !fmtSet && cfg.Format != "" {
		flagFmt = cfg.Format
	}
}

// readConfigFile returns nil without error when no config file exists.
func readConfigFile() (*configFile, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil //nolint:nilnil // no home, no config.
	}

	data, err := os.ReadFile(filepath.Join(home, ".relations", "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil //nolint:nilnil // absent config is not an error.
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
