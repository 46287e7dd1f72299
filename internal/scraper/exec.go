package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/command"
	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/config"
)

// ExecScraper adapts the scraper subsystem's command-line surface to the
// Collaborator contract. The registry is read straight from its JSON file;
// URL listing and scraping shell out to the configured scraper command.
type ExecScraper struct {
	cfg    *config.Config
	runner command.Runner
}

func NewExecScraper(cfg *config.Config, runner command.Runner) *ExecScraper {
	return &ExecScraper{cfg: cfg, runner: runner}
}

// LoadRegistry reads the registry file. A missing file means nothing has been
// scraped yet and yields an empty registry.
func (s *ExecScraper) LoadRegistry() (Registry, error) {
	data, err := os.ReadFile(s.cfg.RegistryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{ScrapedURLs: map[string]ArchiveEntry{}}, nil
		}
		return Registry{}, fmt.Errorf("read registry: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return Registry{}, fmt.Errorf("parse registry: %w", err)
	}
	if reg.ScrapedURLs == nil {
		reg.ScrapedURLs = map[string]ArchiveEntry{}
	}
	return reg, nil
}

// AllURLs asks the scraper command for its full URL list as a JSON array.
func (s *ExecScraper) AllURLs(ctx context.Context) ([]string, error) {
	res, err := s.run(ctx, "--list-urls")
	if err != nil {
		return nil, err
	}

	var urls []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(res.Stdout)), &urls); err != nil {
		return nil, fmt.Errorf("parse url list: %w", err)
	}
	return urls, nil
}

// Run performs the scrape. Archiving and registry updates happen inside the
// scraper; nothing is returned beyond the exit status.
func (s *ExecScraper) Run(ctx context.Context, dryRun, verbose bool) error {
	var flags []string
	if dryRun {
		flags = append(flags, "--dry-run")
	}
	if verbose {
		flags = append(flags, "--verbose")
	}
	_, err := s.run(ctx, flags...)
	return err
}

func (s *ExecScraper) run(ctx context.Context, extra ...string) (command.Result, error) {
	argv := s.cfg.Scraper.Command
	if len(argv) == 0 {
		return command.Result{}, fmt.Errorf("scraper command not configured")
	}
	args := append(append([]string{}, argv[1:]...), extra...)
	return s.runner.Run(ctx, s.cfg.Paths.RepoDir, argv[0], args...)
}
