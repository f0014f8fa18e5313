package install

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/internal/logging"
	"github.com/thoreinstein/flins/internal/paths"
)

// copyDir recursively copies a directory from src to dst, skipping .git.
// dst is created if needed. Symbolic links are recreated as relative links
// when they resolve inside src. Links that dangle or resolve outside src
// are skipped with a warning so a cloned repository cannot pull in files
// from elsewhere on disk.
func copyDir(ctx context.Context, src, dst string) error {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", src)
	}
	return copyTree(ctx, root, src, dst)
}

func copyTree(ctx context.Context, root, src, dst string) error {
	if err := paths.EnsureDir(dst, paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating directory %s", dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "reading directory %s", src)
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			if err := copyLink(ctx, root, srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := copyTree(ctx, root, srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyLink recreates the symlink at src as dst, pointing at the same place
// relative to the copy. root is the resolved top of the tree being copied.
func copyLink(ctx context.Context, root, src, dst string) error {
	logger := logging.FromContext(ctx)

	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		logger.Warn("skipping dangling symlink", "path", src, "error", err)
		return nil
	}
	if !within(root, resolved) {
		logger.Warn("skipping symlink that leaves the skill directory", "path", src, "target", resolved)
		return nil
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(src))
	if err != nil {
		return errors.Wrapf(err, "resolving %s", filepath.Dir(src))
	}
	target, err := filepath.Rel(parent, resolved)
	if err != nil {
		return errors.Wrapf(err, "relativizing link %s", src)
	}
	if err := os.Symlink(target, dst); err != nil {
		return errors.Wrapf(err, "creating link %s", dst)
	}
	return nil
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyFile copies a single file from src to dst, keeping its mode.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening source file %s", src)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errors.Wrapf(err, "stating source file %s", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "creating destination file %s", dst)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return errors.Wrapf(err, "copying content from %s to %s", src, dst)
	}
	return dstFile.Close()
}

// removePath deletes a file, symlink, or directory tree. A missing path is
// not an error. Symlinks are removed without touching their target.
func removePath(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "inspecting %s", path)
	}
	if info.IsDir() {
		return errors.Wrapf(os.RemoveAll(path), "removing %s", path)
	}
	return errors.Wrapf(os.Remove(path), "removing %s", path)
}
