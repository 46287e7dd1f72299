package git

import (
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Read-only repository inspection goes through go-git; anything that mutates
// the tree or needs remote auth shells out to the git CLI instead.

// IsRepo checks if the path is a git repository
func IsRepo(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

// CurrentBranch returns the short name of the checked-out branch.
func CurrentBranch(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	return head.Name().Short(), nil
}

// DetectMainBranch determines if the repo uses "main" or "master"
func DetectMainBranch(path string) string {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "main"
	}

	refs, err := repo.References()
	if err != nil {
		return "main"
	}

	hasRemoteMain := false
	hasRemoteMaster := false
	hasLocalMain := false
	hasLocalMaster := false

	refs.ForEach(func(ref *plumbing.Reference) error {
		switch ref.Name().String() {
		case "refs/remotes/origin/main":
			hasRemoteMain = true
		case "refs/remotes/origin/master":
			hasRemoteMaster = true
		case "refs/heads/main":
			hasLocalMain = true
		case "refs/heads/master":
			hasLocalMaster = true
		}
		return nil
	})

	// Prefer remote refs
	switch {
	case hasRemoteMain:
		return "main"
	case hasRemoteMaster:
		return "master"
	case hasLocalMain:
		return "main"
	case hasLocalMaster:
		return "master"
	}
	return "main"
}

// HasBranch checks if a branch exists in the repository
func HasBranch(path, branchName string) bool {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return false
	}

	// Check remote ref first
	_, err = repo.Reference(plumbing.NewRemoteReferenceName("origin", branchName), true)
	if err == nil {
		return true
	}

	// Check local ref
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branchName), true)
	return err == nil
}
