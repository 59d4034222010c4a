package driver

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitSource is a snapshot of a repository's files as of one commit.
type GitSource struct {
	FS     FS
	Commit string
}

// OpenGitSource opens the repository at repoPath and snapshots the tree of
// rev, which may be anything git rev-parse accepts ("HEAD", a branch, a
// tag or a hash).
func OpenGitSource(repoPath, rev string) (*GitSource, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("git: open %s: %w", repoPath, err)
	}
	return SnapshotRevision(repo, rev)
}

// SnapshotRevision copies the tree of rev into an in-memory filesystem.
func SnapshotRevision(repo *git.Repository, rev string) (*GitSource, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("git: resolve revision %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("git: commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("git: tree of %s: %w", hash, err)
	}
	snapshot := memfs.New()
	err = tree.Files().ForEach(func(f *object.File) error {
		if !f.Mode.IsFile() {
			return nil
		}
		contents, err := f.Contents()
		if err != nil {
			return fmt.Errorf("git: read %s: %w", f.Name, err)
		}
		return util.WriteFile(snapshot, f.Name, []byte(contents), 0o644)
	})
	if err != nil {
		return nil, err
	}
	return &GitSource{FS: snapshot, Commit: hash.String()}, nil
}
