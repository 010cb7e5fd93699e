package backupmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
)

// copyTree copies the directory src to dst, which must not exist yet. ctx is
// checked before every entry, so a cancelled copy leaves a partial tree.
func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return ErrDestinationExists
	} else if !os.IsNotExist(err) {
		return err
	}

	return cp.Copy(src, dst, cp.Options{
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Shallow
		},
		Skip: func(os.FileInfo, string, string) (bool, error) {
			return false, ctx.Err()
		},
		PreserveTimes: true,
	})
}

// replaceTree copies src into a staging directory next to dst and swaps it in
// once the copy is complete. dst is left as it was when the copy fails.
func replaceTree(ctx context.Context, src, dst string) error {
	staging, err := os.MkdirTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".restore-*")
	if err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	restored := filepath.Join(staging, "restored")
	if err := copyTree(ctx, src, restored); err != nil {
		return err
	}

	replaced := filepath.Join(staging, "replaced")
	if err := os.Rename(dst, replaced); err != nil {
		return fmt.Errorf("failed to move %s aside: %w", dst, err)
	}
	if err := os.Rename(restored, dst); err != nil {
		if rerr := os.Rename(replaced, dst); rerr != nil {
			return errors.Join(fmt.Errorf("failed to move restored world into place: %w", err), rerr)
		}
		return fmt.Errorf("failed to move restored world into place: %w", err)
	}
	return nil
}
