package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/internal/logging"
)

// DefaultBranch is assumed when no branch is given for ls-remote.
const DefaultBranch = "main"

// ErrGitNotFound is returned when the git executable is not on PATH.
var ErrGitNotFound = errors.New("git executable not found")

var (
	allowedSchemes = []string{"https://", "http://", "ssh://", "git://", "file://"}
	scpLikeURL     = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[A-Za-z0-9._/~-]+\.git$`)
)

// IsURL returns true if s looks like a git repository URL.
// It checks for:
//   - URLs containing "://" (e.g., https://, git://)
//   - URLs ending with ".git"
//   - SSH-style URLs starting with "git@"
func IsURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	if strings.HasSuffix(s, ".git") {
		return true
	}
	if strings.HasPrefix(s, "git@") {
		return true
	}
	return false
}

// ValidateURL rejects anything git could interpret as an option or as a
// remote helper (ext::). Accepted forms are URLs with a known scheme and
// scp-like "user@host:path.git".
func ValidateURL(url string) error {
	if url == "" {
		return errors.New("empty repository URL")
	}
	if strings.HasPrefix(url, "-") {
		return errors.Newf("invalid repository URL %q", url)
	}
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(url, scheme) && len(url) > len(scheme) {
			return nil
		}
	}
	if scpLikeURL.MatchString(url) {
		return nil
	}
	return errors.Newf("unsupported repository URL %q", url)
}

// ValidateRemote checks if repoPath is a valid git repository by verifying
// the existence of a .git directory.
func ValidateRemote(repoPath string) error {
	gitDir := filepath.Join(repoPath, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("not a git repository: %s", repoPath)
		}
		return errors.Wrap(err, "checking git directory")
	}
	if !info.IsDir() {
		return errors.Newf(".git is not a directory: %s", gitDir)
	}
	return nil
}

// Client is the set of git operations flins performs. Runner implements
// it against the git executable.
type Client interface {
	Clone(ctx context.Context, url, branch string) (string, error)
	LatestCommit(ctx context.Context, url, branch string) (string, error)
	HeadCommit(ctx context.Context, dir string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
}

var _ Client = (*Runner)(nil)

// Runner runs git as a subprocess. The zero value is not usable; use
// NewRunner.
type Runner struct {
	bin      string
	attempts uint
	delay    time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithRetry sets how often network operations are attempted and the
// initial backoff between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(r *Runner) {
		r.attempts = attempts
		r.delay = delay
	}
}

// WithBinary overrides the git executable.
func WithBinary(bin string) Option {
	return func(r *Runner) { r.bin = bin }
}

// NewRunner returns a Runner that retries network operations three times.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{bin: "git", attempts: 3, delay: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clone makes a shallow clone of url into a new temporary directory and
// returns its path. An empty branch clones the remote's default branch.
// The caller removes the directory.
func (r *Runner) Clone(ctx context.Context, url, branch string) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", err
	}

	var dir string
	err := r.withRetry(ctx, "clone", func() error {
		tmp, err := os.MkdirTemp("", "flins-*")
		if err != nil {
			return retry.Unrecoverable(errors.Wrap(err, "creating clone directory"))
		}

		args := []string{"clone", "--depth", "1"}
		if branch != "" {
			args = append(args, "--branch", branch)
		}
		args = append(args, "--", url, tmp)

		if _, err := r.run(ctx, "", args...); err != nil {
			_ = os.RemoveAll(tmp)
			return err
		}
		dir = tmp
		return nil
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

// LatestCommit returns the commit at the tip of branch on the remote.
// An empty branch means DefaultBranch. A branch the remote does not have
// yields "".
func (r *Runner) LatestCommit(ctx context.Context, url, branch string) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", err
	}
	if branch == "" {
		branch = DefaultBranch
	}

	var out string
	err := r.withRetry(ctx, "ls-remote", func() error {
		var err error
		out, err = r.run(ctx, "", "ls-remote", "--", url, "refs/heads/"+branch)
		return err
	})
	if err != nil {
		return "", err
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], nil
}

// HeadCommit returns the commit checked out in dir.
func (r *Runner) HeadCommit(ctx context.Context, dir string) (string, error) {
	return r.run(ctx, dir, "rev-parse", "HEAD")
}

// CurrentBranch returns the branch checked out in dir.
func (r *Runner) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return r.run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

func (r *Runner) withRetry(ctx context.Context, op string, fn func() error) error {
	logger := logging.FromContext(ctx)
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrGitNotFound) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("retrying git "+op, "attempt", n+1, "max_attempts", r.attempts, "error", err)
		}),
	)
}

// run executes git with args in dir and returns trimmed stdout. Failures
// carry git's stderr as error detail.
func (r *Runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "running git", "args", strings.Join(args, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", errors.Wrapf(ErrGitNotFound, "%s", r.bin)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		err = errors.Wrapf(err, "git %s failed", args[0])
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.WithDetail(err, logging.RedactText(msg))
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
