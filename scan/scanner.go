// Package scan computes current local signatures for a set of candidate
// subpaths in parallel, bounded by a fixed buffer pool (spec.md §4.4). Its
// fan-out shape is grounded directly in backend/local/parallel_stat.go:
// one goroutine per candidate, a shared bounded resource gating how many
// can be doing real work at once, results funneled back through a
// channel rather than shared mutable state.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/signature"
)

// Result is one subpath's outcome: Sig is nil if the path is absent or
// unsupported (spec.md §4.1 KindOther, or any per-path I/O error — per-path
// failure never aborts the scan, spec.md §4.4/§7).
type Result struct {
	Sub dfs.SubPath
	Sig *signature.Signature
}

// Scanner computes signatures for candidate subpaths under one mapping
// root.
type Scanner struct {
	root string
	pool *Pool
}

// New returns a Scanner rooted at root, using pool to bound concurrent
// scan buffers.
func New(root string, pool *Pool) *Scanner {
	return &Scanner{root: root, pool: pool}
}

// Scan computes signatures for every candidate subpath, fanning out in
// parallel. Per-path I/O failures yield a nil Signature for that path
// rather than aborting the whole scan (spec.md §4.4); only a context
// cancellation stops the scan early, surfaced as a ScanFailure-classified
// error by the caller.
func (s *Scanner) Scan(ctx context.Context, subs []dfs.SubPath) (map[dfs.SubPath]*signature.Signature, error) {
	results := make(chan Result, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			sig, err := s.scanOne(gctx, sub)
			if err != nil {
				return err
			}
			results <- Result{Sub: sub, Sig: sig}
			return nil
		})
	}

	err := g.Wait()
	close(results)

	out := make(map[dfs.SubPath]*signature.Signature, len(subs))
	for r := range results {
		out[r.Sub] = r.Sig
	}
	if err != nil {
		return out, err
	}
	return out, nil
}

func (s *Scanner) scanOne(ctx context.Context, sub dfs.SubPath) (*signature.Signature, error) {
	abs := s.abs(sub)

	present, _, err := s.exists(abs, sub)
	if err != nil {
		return nil, nil // per-path failure: treat as absent
	}
	if !present {
		return nil, nil
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return nil, nil
	}

	if !info.Mode().IsRegular() {
		sig, err := signature.Compute(abs, nil, info)
		if err != nil {
			return nil, nil
		}
		return sig, nil
	}

	buf, ok := s.pool.Get(ctx)
	if !ok {
		return nil, ctx.Err()
	}
	defer s.pool.Put(buf)

	sig, err := signature.Compute(abs, buf, info)
	if err != nil {
		return nil, nil
	}
	return sig, nil
}

func (s *Scanner) abs(sub dfs.SubPath) string {
	return filepath.Join(append([]string{s.root}, sub.Segments()...)...)
}

// exists determines whether sub exists as a regular-case match, per
// spec.md §4.4: a path that exists only under a different case on a
// case-insensitive volume is treated as absent.
func (s *Scanner) exists(abs string, sub dfs.SubPath) (present bool, isSymlink bool, err error) {
	info, statErr := os.Lstat(abs)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return false, false, nil
		}
		return false, false, statErr
	}
	isSymlink = info.Mode()&os.ModeSymlink != 0

	if sub.Empty() {
		return true, isSymlink, nil
	}

	if isSymlink {
		parentAbs := filepath.Dir(abs)
		entries, err := os.ReadDir(parentAbs)
		if err != nil {
			return false, isSymlink, nil
		}
		for _, e := range entries {
			if e.Name() == sub.Last() {
				return true, isSymlink, nil
			}
		}
		return false, isSymlink, nil
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return false, isSymlink, nil
	}
	if !strings.Contains(resolved, abs) {
		return false, isSymlink, nil
	}
	return true, isSymlink, nil
}
