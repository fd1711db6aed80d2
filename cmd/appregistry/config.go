package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
)

var (
	configFormat   string
	configShowKeys bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the build configuration snapshot",
	Long: `Assemble the build configuration snapshot from the stored apps, the
environment and the current git commit, then print it. App keys are
redacted unless --show-keys is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		snapshot, err := newBuildConfigLoader(cfg, store).Load(cmd.Context())
		if err != nil {
			return err
		}

		return writeSnapshot(cmd.OutOrStdout(), snapshot, configFormat, configShowKeys)
	},
}

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", "json", "output format: json or yaml")
	configCmd.Flags().BoolVar(&configShowKeys, "show-keys", false, "include app keys in the output")
}

type snapshotApp struct {
	AppID   string `json:"appId" yaml:"appId"`
	Type    string `json:"type" yaml:"type"`
	AppName string `json:"appName" yaml:"appName"`
	AppKey  string `json:"appKey,omitempty" yaml:"appKey,omitempty"`
}

type snapshotView struct {
	Version    string        `json:"version" yaml:"version"`
	CommitHash string        `json:"commitHash" yaml:"commitHash"`
	CommitDate string        `json:"commitDate" yaml:"commitDate"`
	BuildMode  string        `json:"buildMode" yaml:"buildMode"`
	IsApp      bool          `json:"isApp" yaml:"isApp"`
	BasePath   string        `json:"basePath" yaml:"basePath"`
	Apps       []snapshotApp `json:"apps" yaml:"apps"`
	Template   string        `json:"template" yaml:"template"`
}

// writeSnapshot renders cfg to w in the requested format.
func writeSnapshot(w io.Writer, cfg model.BuildConfig, format string, showKeys bool) error {
	apps := cfg.Apps
	if !showKeys {
		apps = cfg.RedactedApps()
	}

	view := snapshotView{
		Version:    cfg.Version,
		CommitHash: cfg.CommitHash,
		CommitDate: cfg.CommitDate,
		BuildMode:  cfg.BuildMode,
		IsApp:      cfg.IsApp,
		BasePath:   cfg.BasePath,
		Apps:       make([]snapshotApp, 0, len(apps)),
		Template:   cfg.Template,
	}
	for _, app := range apps {
		view.Apps = append(view.Apps, snapshotApp{
			AppID:   app.ID,
			Type:    string(app.Type),
			AppName: app.Name,
			AppKey:  app.Key,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
