package scraper

import (
	"reflect"
	"testing"
)

func TestFilterNewURLs(t *testing.T) {
	reg := Registry{ScrapedURLs: map[string]ArchiveEntry{
		"https://news.example/a": {},
		"https://news.example/b": {},
	}}
	all := []string{
		"https://news.example/c",
		"https://news.example/a",
		"https://news.example/b",
		"https://news.example/d",
	}

	got := FilterNewURLs(all, reg)
	want := []string{"https://news.example/c", "https://news.example/d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterNewURLsEmptyRegistry(t *testing.T) {
	got := FilterNewURLs([]string{"https://x/1"}, Registry{})
	if len(got) != 1 {
		t.Errorf("got %v", got)
	}
}

func TestFilterNewURLsNothingNew(t *testing.T) {
	reg := Registry{ScrapedURLs: map[string]ArchiveEntry{"https://x/1": {}}}
	if got := FilterNewURLs([]string{"https://x/1"}, reg); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
