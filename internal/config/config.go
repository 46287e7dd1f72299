package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default repositories and branches, overridable via environment.
const (
	DefaultUpstreamRepo = "Hong-Kong-Emergency-Coordination-Hub/Hong-Kong-Fire-Documentary"
	DefaultPRBranch     = "scraper-updates"
	DefaultMainBranch   = "main"
)

// Config is built once at startup and never mutated afterwards. Every
// component receives it by reference; nothing re-reads the environment.
type Config struct {
	GitHub  GitHubConfig  `toml:"github"`
	Paths   PathsConfig   `toml:"paths"`
	Timing  TimingConfig  `toml:"timing"`
	Scraper ScraperConfig `toml:"scraper"`
	Update  UpdateConfig  `toml:"update"`
}

type GitHubConfig struct {
	UpstreamRepo string `toml:"upstream_repo"`
	ForkRepo     string `toml:"fork_repo"`
	PRBranch     string `toml:"pr_branch"`
	MainBranch   string `toml:"main_branch"`
}

type PathsConfig struct {
	// RepoDir is the working tree the daemon operates on
	RepoDir string `toml:"repo_dir"`
	// LogFile is relative to RepoDir
	LogFile string `toml:"log_file"`
	// ContentDir holds one subdirectory per news source, relative to RepoDir
	ContentDir string `toml:"content_dir"`
	// RegistryFile is the scraper's URL registry, relative to RepoDir
	RegistryFile string `toml:"registry_file"`
}

type TimingConfig struct {
	SyncIntervalMinutes int `toml:"sync_interval_minutes"`
	PRIntervalMinutes   int `toml:"pr_interval_minutes"`
	PollSeconds         int `toml:"poll_seconds"`
}

type ScraperConfig struct {
	// Command invokes the scraper subsystem; args are appended to it
	Command []string `toml:"command"`
}

type UpdateConfig struct {
	Enabled   bool      `toml:"enabled"`
	LastCheck time.Time `toml:"last_check"`
	Repo      string    `toml:"repo"`
}

func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			UpstreamRepo: DefaultUpstreamRepo,
			PRBranch:     DefaultPRBranch,
			MainBranch:   DefaultMainBranch,
		},
		Paths: PathsConfig{
			RepoDir:      ".",
			LogFile:      "logs/scraper.log",
			ContentDir:   "content/news",
			RegistryFile: "data/registry.json",
		},
		Timing: TimingConfig{
			SyncIntervalMinutes: 10,
			PRIntervalMinutes:   60,
			PollSeconds:         60,
		},
		Scraper: ScraperConfig{
			Command: []string{"python3", "scripts/scraper/scraper.py"},
		},
		Update: UpdateConfig{
			Enabled: true,
			Repo:    "klorganization/Hong-Kong-Fire-Documentary-mirror",
		},
	}
}

func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "scraperd.toml"), nil
}

// Load builds the Config: defaults, then the optional TOML file, then
// environment overrides. The result is not validated; call Validate before
// using it.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath()
	if err == nil {
		data, readErr := os.ReadFile(path)
		switch {
		case readErr == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(readErr):
			_ = cfg.Save() // Best effort save
		default:
			return nil, readErr
		}
	}

	cfg.applyEnv()
	cfg.Paths.RepoDir = expandTilde(cfg.Paths.RepoDir)
	return cfg, nil
}

// applyEnv overlays the environment variables recognized by the daemon.
func (c *Config) applyEnv() {
	if v := os.Getenv("UPSTREAM_REPO"); v != "" {
		c.GitHub.UpstreamRepo = v
	}
	if v := os.Getenv("FORK_REPO"); v != "" {
		c.GitHub.ForkRepo = v
	}
	if v := os.Getenv("PR_BRANCH"); v != "" {
		c.GitHub.PRBranch = v
	}
	if v := os.Getenv("MAIN_BRANCH"); v != "" {
		c.GitHub.MainBranch = v
	}
}

// Validate checks the startup invariants. A missing fork repo is fatal: the
// daemon has no push target without it.
func (c *Config) Validate() error {
	if c.GitHub.ForkRepo == "" {
		return fmt.Errorf("FORK_REPO not set: export FORK_REPO='username/repo-name'")
	}
	if !strings.Contains(c.GitHub.ForkRepo, "/") {
		return fmt.Errorf("FORK_REPO %q must be of the form owner/name", c.GitHub.ForkRepo)
	}
	if c.Timing.SyncIntervalMinutes <= 0 || c.Timing.PRIntervalMinutes <= 0 {
		return fmt.Errorf("intervals must be positive (sync=%d pr=%d)",
			c.Timing.SyncIntervalMinutes, c.Timing.PRIntervalMinutes)
	}
	if c.Timing.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive (got %d)", c.Timing.PollSeconds)
	}
	return nil
}

func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ForkOwner returns the account part of the fork repo path.
func (c *Config) ForkOwner() string {
	owner, _, _ := strings.Cut(c.GitHub.ForkRepo, "/")
	return owner
}

// PRHead is the cross-fork head ref used by gh ("owner:branch").
func (c *Config) PRHead() string {
	return c.ForkOwner() + ":" + c.GitHub.PRBranch
}

func (c *Config) UpstreamURL() string {
	return "https://github.com/" + c.GitHub.UpstreamRepo + ".git"
}

func (c *Config) ForkURL() string {
	return "https://github.com/" + c.GitHub.ForkRepo + ".git"
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Timing.SyncIntervalMinutes) * time.Minute
}

func (c *Config) PRInterval() time.Duration {
	return time.Duration(c.Timing.PRIntervalMinutes) * time.Minute
}

func (c *Config) PollPeriod() time.Duration {
	return time.Duration(c.Timing.PollSeconds) * time.Second
}

func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.RepoDir, filepath.FromSlash(c.Paths.LogFile))
}

func (c *Config) ContentPath() string {
	return filepath.Join(c.Paths.RepoDir, filepath.FromSlash(c.Paths.ContentDir))
}

func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.RepoDir, filepath.FromSlash(c.Paths.RegistryFile))
}

// ShouldCheckForUpdate returns true if update check is enabled and 24h since last check
func (c *Config) ShouldCheckForUpdate() bool {
	if !c.Update.Enabled {
		return false
	}
	return time.Since(c.Update.LastCheck) > 24*time.Hour
}

// RecordUpdateCheck updates the last check time
func (c *Config) RecordUpdateCheck() {
	c.Update.LastCheck = time.Now()
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
