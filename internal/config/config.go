// Package config loads the per-site sync configuration: a TOML file with one
// table per site.
package config

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/viper"

	"github.com/neocities-sync/neocities-sync/internal/utils"
)

// DefaultPath is where the config file lives unless -C overrides it.
const DefaultPath = "~/.config/neocities-sync.toml"

// Site is the sync configuration for one table of the config file. The table
// name only labels log output; the API key identifies the site.
type Site struct {
	Name              string
	RootDir           string
	APIKey            string
	SyncDisallowed    bool
	SyncHidden        bool
	SyncVCS           bool
	RemoveEmptyDirs   bool
	AllowedExtensions []string
	ExcludePatterns   []string
}

func (s *Site) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("site %q: api_key is required", s.Name)
	}
	if s.RootDir == "" {
		return fmt.Errorf("site %q: root_dir is required", s.Name)
	}
	return nil
}

// LogValue keeps the API key out of log output.
func (s *Site) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", s.Name),
		slog.String("root_dir", s.RootDir),
		slog.String("api_key", "<redacted>"),
		slog.Bool("sync_disallowed", s.SyncDisallowed),
		slog.Bool("sync_hidden", s.SyncHidden),
		slog.Bool("sync_vcs", s.SyncVCS),
		slog.Bool("remove_empty_dirs", s.RemoveEmptyDirs),
	)
}

// Load parses the config file and returns its sites sorted by name, with
// root_dir resolved to an absolute path.
func Load(path string) ([]*Site, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config read %q: %w", path, err)
	}

	names := make([]string, 0, len(v.AllSettings()))
	for name := range v.AllSettings() {
		names = append(names, name)
	}
	sort.Strings(names)

	sites := make([]*Site, 0, len(names))
	for _, name := range names {
		sub := v.Sub(name)
		if sub == nil {
			// Top-level scalar, not a site table.
			continue
		}
		site := &Site{
			Name:              name,
			RootDir:           sub.GetString("root_dir"),
			APIKey:            sub.GetString("api_key"),
			SyncDisallowed:    sub.GetBool("sync_disallowed"),
			SyncHidden:        sub.GetBool("sync_hidden"),
			SyncVCS:           sub.GetBool("sync_vcs"),
			RemoveEmptyDirs:   true,
			AllowedExtensions: sub.GetStringSlice("allowed_extensions"),
			ExcludePatterns:   sub.GetStringSlice("exclude_patterns"),
		}
		if sub.IsSet("remove_empty_dirs") {
			site.RemoveEmptyDirs = sub.GetBool("remove_empty_dirs")
		}
		if site.RootDir != "" {
			resolved, err := utils.ResolvePath(site.RootDir)
			if err != nil {
				return nil, fmt.Errorf("site %q: %w", name, err)
			}
			site.RootDir = resolved
		}
		if err := site.Validate(); err != nil {
			return nil, err
		}
		slog.Debug("loaded site config", "site", site)
		sites = append(sites, site)
	}

	if len(sites) == 0 {
		return nil, fmt.Errorf("config %q: no sites defined", path)
	}
	return sites, nil
}
