package driver

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

func commitFiles(t *testing.T, repo *git.Repository, files map[string]string, message string) string {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, contents := range files {
		if err := util.WriteFile(wt.Filesystem, name, []byte(contents), 0o644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "stc", Email: "stc@example.com", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return hash.String()
}

func TestSnapshotRevision(t *testing.T) {
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := commitFiles(t, repo, map[string]string{"src/a.ts": "v1", "src/a.ts.ast.json": `{"type":"Module","body":[]}`}, "first")
	second := commitFiles(t, repo, map[string]string{"src/a.ts": "v2", "src/b.ts": "new"}, "second")

	old, err := SnapshotRevision(repo, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if old.Commit != first {
		t.Fatalf("expected commit %s, got %s", first, old.Commit)
	}
	data, err := readFile(old.FS, "src/a.ts")
	if err != nil || string(data) != "v1" {
		t.Fatalf("expected v1 contents, got %q (%v)", data, err)
	}
	if isFile(old.FS, "src/b.ts") {
		t.Fatalf("expected src/b.ts to be absent at the first commit")
	}

	head, err := SnapshotRevision(repo, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head.Commit != second {
		t.Fatalf("expected HEAD to be %s, got %s", second, head.Commit)
	}
	data, err = readFile(head.FS, "src/a.ts")
	if err != nil || string(data) != "v2" {
		t.Fatalf("expected v2 contents, got %q (%v)", data, err)
	}

	if _, err := SnapshotRevision(repo, "no-such-branch"); err == nil {
		t.Fatalf("expected error for unknown revision")
	}
}
