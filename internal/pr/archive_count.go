package pr

import (
	"os"
	"path/filepath"
)

// CountArchives walks the content directory and sums the entries of every
// per-source archive subdirectory. The layout is content/<source>/archive/*;
// sources without an archive directory contribute nothing.
func CountArchives(contentDir string) int {
	sources, err := os.ReadDir(contentDir)
	if err != nil {
		return 0
	}

	total := 0
	for _, source := range sources {
		if !source.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(contentDir, source.Name(), "archive"))
		if err != nil {
			continue
		}
		total += len(entries)
	}
	return total
}
