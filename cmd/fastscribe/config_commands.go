package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fastscribe/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set worker.url or export OPENAI_API_KEY before running `fastscribe transcribe`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

type configSummary struct {
	Path       string   `json:"path"`
	Exists     bool     `json:"exists"`
	Backends   []string `json:"backends"`
	WorkerURL  string   `json:"worker_url,omitempty"`
	Cloud      int      `json:"cloud_credentials"`
	Local      bool     `json:"local_enabled"`
	Cache      string   `json:"cache_path,omitempty"`
	NotesModel string   `json:"notes_model"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			summary := configSummary{
				Path:       resolved,
				Exists:     exists,
				Backends:   cfg.Backends.Order,
				WorkerURL:  cfg.Worker.URL,
				Local:      cfg.Local.Enabled,
				NotesModel: cfg.Notes.Model,
			}
			if pool, err := credentialPool(cfg); err == nil {
				summary.Cloud = pool.Size()
			}
			if cfg.Cache.Enabled {
				summary.Cache = cfg.Paths.CachePath
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", filepath.Clean(resolved))
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Backends: %s\n", strings.Join(summary.Backends, ", "))
			fmt.Fprintf(out, "Worker configured: %s\n", yesNo(summary.WorkerURL != ""))
			fmt.Fprintf(out, "Cloud credentials: %d\n", summary.Cloud)
			fmt.Fprintf(out, "Local engine enabled: %s\n", yesNo(summary.Local))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
