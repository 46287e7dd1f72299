package models

// ScrapeResult summarizes one scraper invocation.
//
// Counts are approximated from the registry entry delta, not from per-URL
// reporting, so Failed can overstate transient failures that succeed on a
// later cycle.
type ScrapeResult struct {
	// Scraped is the number of URLs newly recorded in the registry
	Scraped int
	// Failed is the number of new URLs not recorded after the run
	Failed int
}

// Empty reports whether the invocation did no work at all
func (r ScrapeResult) Empty() bool {
	return r.Scraped == 0 && r.Failed == 0
}
