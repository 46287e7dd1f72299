package scraper

import "sort"

// Registry mirrors the scraping subsystem's URL registry: every URL that has
// been archived, with its archive metadata. The daemon only reads it; the
// scraper owns all writes.
type Registry struct {
	ScrapedURLs map[string]ArchiveEntry `json:"scraped_urls"`
}

// ArchiveEntry is the per-URL metadata recorded by the scraper.
type ArchiveEntry struct {
	Title       string `json:"title,omitempty"`
	Source      string `json:"source,omitempty"`
	ArchivePath string `json:"archive_path,omitempty"`
	ScrapedAt   string `json:"scraped_at,omitempty"`
}

// Size returns the number of registered URLs.
func (r Registry) Size() int {
	return len(r.ScrapedURLs)
}

// FilterNewURLs returns the URLs present in all but absent from the registry,
// sorted for stable logs.
func FilterNewURLs(all []string, reg Registry) []string {
	var fresh []string
	for _, u := range all {
		if _, ok := reg.ScrapedURLs[u]; !ok {
			fresh = append(fresh, u)
		}
	}
	sort.Strings(fresh)
	return fresh
}
