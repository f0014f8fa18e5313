package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/git"
)

// fakeRemote is a repository served by fakeGit.
type fakeRemote struct {
	// dir holds the files of the branch tip.
	dir    string
	commit string
}

// fakeGit serves repositories from local fixture directories. Clone
// copies the fixture so callers may delete the result.
type fakeGit struct {
	t *testing.T

	mu      sync.Mutex
	remotes map[string]*fakeRemote // keyed by url@branch
	heads   map[string]string      // clone dir -> commit
	clones  int
}

func newFakeGit(t *testing.T) *fakeGit {
	return &fakeGit{
		t:       t,
		remotes: make(map[string]*fakeRemote),
		heads:   make(map[string]string),
	}
}

// install makes newGitClient return f for the rest of the test.
func (f *fakeGit) install() {
	orig := newGitClient
	newGitClient = func() git.Client { return f }
	f.t.Cleanup(func() { newGitClient = orig })
}

// serve publishes dir as url@branch at commit.
func (f *fakeGit) serve(url, branch, dir, commit string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remotes[url+"@"+branch] = &fakeRemote{dir: dir, commit: commit}
}

func (f *fakeGit) remote(url, branch string) (*fakeRemote, error) {
	if branch == "" {
		branch = "main"
	}
	r, ok := f.remotes[url+"@"+branch]
	if !ok {
		return nil, errors.Newf("repository %s@%s not found", url, branch)
	}
	return r, nil
}

func (f *fakeGit) Clone(_ context.Context, url, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.remote(url, branch)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(f.t.TempDir(), "clone")
	if err := os.CopyFS(dir, os.DirFS(r.dir)); err != nil {
		return "", err
	}
	f.heads[dir] = r.commit
	f.clones++
	return dir, nil
}

func (f *fakeGit) LatestCommit(_ context.Context, url, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.remote(url, branch)
	if err != nil {
		return "", err
	}
	return r.commit, nil
}

func (f *fakeGit) HeadCommit(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.heads[dir]
	if !ok {
		return "", errors.Newf("%s is not a git repository", dir)
	}
	return c, nil
}

func (f *fakeGit) CurrentBranch(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.heads[dir]; !ok {
		return "", errors.Newf("%s is not a git repository", dir)
	}
	return "main", nil
}
