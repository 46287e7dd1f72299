package models

// PullRequest represents GitHub PR info returned from gh CLI
type PullRequest struct {
	Number uint64 `json:"number"`
	URL    string `json:"url"`
	State  string `json:"state"`
}
