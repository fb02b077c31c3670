package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neocities-sync/neocities-sync/internal/config"
	"github.com/neocities-sync/neocities-sync/internal/neocities"
	"github.com/neocities-sync/neocities-sync/internal/syncer"
	"github.com/neocities-sync/neocities-sync/internal/utils"
	"github.com/neocities-sync/neocities-sync/internal/version"
)

var cyan = color.New(color.FgHiCyan, color.Bold).SprintFunc()

var rootCmd = &cobra.Command{
	Use:   "neocities-sync",
	Short: "Sync local directories with neocities.org sites",
	Long: `Sync local directories with neocities.org sites.

The config file has one TOML table per site:

    [mysite]
    api_key = "6b9b522e7d8d93e88c464aafc421a61b"
    root_dir = "~/path/to/site"
    allowed_extensions = ["html", "css", "js"]
    remove_empty_dirs = false

Any subdirectory of root_dir may contain a ".neocitiesignore" file with
.gitignore syntax to exclude files from the sync.`,
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetCount("verbose")
		quiet, _ := cmd.Flags().GetCount("quiet")
		setupLogging(slog.LevelInfo + slog.Level(4*(quiet-verbose)))

		configPath, err := utils.ResolvePath(viper.GetString("config"))
		if err != nil {
			return err
		}
		sites, err := config.Load(configPath)
		if err != nil {
			return err
		}
		names, _ := cmd.Flags().GetStringArray("site")
		selected, err := selectSites(sites, names)
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true
		fmt.Fprintln(os.Stderr, cyan(version.AppName + " " + version.Short()))

		dryRun := viper.GetBool("dry_run")
		for _, site := range selected {
			client := neocities.New(site.APIKey)
			if err := syncer.New(site, client, dryRun).Run(cmd.Context()); err != nil {
				return fmt.Errorf("site %q: %w", site.Name, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("config", "C", config.DefaultPath, "path to the config file")
	rootCmd.Flags().StringArrayP("site", "s", nil, "site to sync (repeatable; default all sites)")
	rootCmd.Flags().BoolP("dry-run", "d", false, "do not upload or delete anything")
	rootCmd.Flags().CountP("verbose", "v", "more output (repeatable)")
	rootCmd.Flags().CountP("quiet", "q", "less output (repeatable)")

	viper.BindPFlag("config", rootCmd.Flags().Lookup("config"))
	viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	viper.SetEnvPrefix("NEOCITIES_SYNC")
	viper.AutomaticEnv()
}

func setupLogging(level slog.Level) {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func selectSites(sites []*config.Site, names []string) ([]*config.Site, error) {
	if len(names) == 0 {
		return sites, nil
	}
	byName := make(map[string]*config.Site, len(sites))
	for _, s := range sites {
		byName[s.Name] = s
	}
	selected := make([]*config.Site, 0, len(names))
	for _, name := range names {
		site, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("site %q not found in config", name)
		}
		selected = append(selected, site)
	}
	return selected, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
