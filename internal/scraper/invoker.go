package scraper

import (
	"context"
	"fmt"

	"github.com/klorganization/Hong-Kong-Fire-Documentary-mirror/internal/models"
)

// Collaborator is the contract with the external scraping subsystem. The
// daemon consumes these entry points; URL discovery, deduplication and HTML
// archiving all happen on the other side of it.
type Collaborator interface {
	// LoadRegistry reads the current URL registry
	LoadRegistry() (Registry, error)
	// AllURLs lists every URL the scraper knows how to archive
	AllURLs(ctx context.Context) ([]string, error)
	// Run performs the scrape, mutating the registry as a side effect
	Run(ctx context.Context, dryRun, verbose bool) error
}

// Invoker decides whether a scrape is worth running and approximates its
// outcome. Success is measured as the registry growth across the run, failure
// as the new URLs left unregistered; this is a size-delta heuristic, not
// per-URL accounting.
type Invoker struct {
	collab Collaborator
}

func NewInvoker(collab Collaborator) *Invoker {
	return &Invoker{collab: collab}
}

// ScrapeNew runs the scraper only when the filter finds unregistered URLs.
// With nothing new it returns a zero result without touching the scraper.
func (i *Invoker) ScrapeNew(ctx context.Context) (models.ScrapeResult, error) {
	before, err := i.collab.LoadRegistry()
	if err != nil {
		return models.ScrapeResult{}, fmt.Errorf("load registry: %w", err)
	}

	all, err := i.collab.AllURLs(ctx)
	if err != nil {
		return models.ScrapeResult{}, fmt.Errorf("list urls: %w", err)
	}

	fresh := FilterNewURLs(all, before)
	if len(fresh) == 0 {
		return models.ScrapeResult{}, nil
	}

	if err := i.collab.Run(ctx, false, false); err != nil {
		return models.ScrapeResult{}, fmt.Errorf("run scraper: %w", err)
	}

	after, err := i.collab.LoadRegistry()
	if err != nil {
		return models.ScrapeResult{}, fmt.Errorf("reload registry: %w", err)
	}

	scraped := after.Size() - before.Size()
	if scraped < 0 {
		scraped = 0
	}
	failed := len(fresh) - scraped
	if failed < 0 {
		failed = 0
	}
	return models.ScrapeResult{Scraped: scraped, Failed: failed}, nil
}
