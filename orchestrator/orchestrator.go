// Package orchestrator ties the debouncer, signature scanner, change
// planner, metadata sync and content streamer into the Sync Orchestrator
// state machine of spec.md §4.8. Its run/close lifecycle — a goroutine
// driven by a stop channel plus a WaitGroup join — is the same shape
// rclone's cmd/mount and cmd/serve/* daemons use to bring a long-running
// loop up and tear it down cleanly.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rclone/dsync/config"
	"github.com/rclone/dsync/content"
	"github.com/rclone/dsync/debounce"
	dfs "github.com/rclone/dsync/fs"
	"github.com/rclone/dsync/fserrors"
	"github.com/rclone/dsync/logging"
	"github.com/rclone/dsync/metasync"
	"github.com/rclone/dsync/plan"
	"github.com/rclone/dsync/rpcagent"
	"github.com/rclone/dsync/scan"
	"github.com/rclone/dsync/skip"
	"github.com/rclone/dsync/signature"
	"github.com/rclone/dsync/vfs"
)

// drainEveryActions is the metadata-phase back-pressure checkpoint:
// drain outstanding RPC acknowledgements after this many actions, and
// once more at the end of every pass (spec.md §4.6).
const drainEveryActions = 1000

// mappingState is the per-mapping working set the Sync thread owns.
type mappingState struct {
	mapping  dfs.Mapping
	root     string
	vfs      *vfs.VFS
	scanner  *scan.Scanner
	streamer *content.Streamer
}

// Orchestrator runs the sync loop of spec.md §4.8. It owns the VFS for
// every configured mapping and is the only component that mutates it or
// writes to the RPC stream (spec.md §5's single-writer invariant).
type Orchestrator struct {
	cfg    config.Config
	client rpcagent.Client
	skipFn skip.Func

	queue     *debounce.Queue
	debouncer *debounce.Debouncer
	pool      *scan.Pool

	states []*mappingState
	byRoot map[string]*mappingState

	onComplete func()

	done     chan struct{}
	closeWg  sync.WaitGroup
	closeOne sync.Once
}

// New builds an Orchestrator from cfg. It does not perform any I/O; call
// Run to execute INITIAL_SCAN and enter the sync loop.
func New(cfg config.Config, client rpcagent.Client) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	skipFn, err := resolveSkip(cfg.SkipPolicy)
	if err != nil {
		return nil, err
	}

	pool := scan.NewPool()
	queue := debounce.NewQueue(1024)

	o := &Orchestrator{
		cfg:       cfg,
		client:    client,
		skipFn:    skipFn,
		queue:     queue,
		debouncer: debounce.New(queue, cfg.DebounceMs),
		pool:      pool,
		byRoot:    make(map[string]*mappingState),
		done:      make(chan struct{}),
	}

	for _, m := range cfg.Mappings {
		root := filepath.Clean(m.LocalRoot)
		v := vfs.New()
		st := &mappingState{
			mapping:  m,
			root:     root,
			vfs:      v,
			scanner:  scan.New(root, pool),
			streamer: content.New(client, v),
		}
		o.states = append(o.states, st)
		o.byRoot[root] = st
	}

	return o, nil
}

func resolveSkip(policy config.SkipPolicy) (skip.Func, error) {
	switch policy {
	case config.SkipPolicyNone, "":
		return skip.SkipNone, nil
	case config.SkipPolicyDotGit:
		return skip.SkipDotGit, nil
	case config.SkipPolicyGitignore:
		// A full gitignore engine is a substantial external collaborator
		// this module does not ship (see DESIGN.md), so this policy is
		// accepted but skips nothing. New offers no way to supply a
		// custom skip.Func.
		return skip.SkipNone, nil
	default:
		return nil, &unknownSkipPolicyError{policy: string(policy)}
	}
}

type unknownSkipPolicyError struct{ policy string }

func (e *unknownSkipPolicyError) Error() string {
	return "orchestrator: unknown skip policy " + e.policy
}

// OnComplete registers a callback fired whenever the event queue is empty
// at the end of a sync pass (spec.md §6, used by tests to observe
// quiescence).
func (o *Orchestrator) OnComplete(fn func()) {
	o.onComplete = fn
}

// Push enqueues one watcher batch. Safe to call concurrently with Run. The
// queue buffers 1024 batches; once that buffer is full, Push blocks until
// the sync loop takes a batch off it.
func (o *Orchestrator) Push(batch []string) {
	o.queue.Push(batch)
}

// Run executes INITIAL_SCAN and then drives the sync loop until ctx is
// cancelled, Close is called, or a fatal RPC error occurs. A nil return
// means a clean shutdown; a non-nil return is always a fatal error
// (spec.md §7's RpcException case) — recoverable failures are handled
// internally and never escape Run.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.closeWg.Add(1)
	defer o.closeWg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-o.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := o.initialScan(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-o.done:
			return nil
		default:
		}

		batch, ok := o.debouncer.Collect(ctx)
		if !ok {
			return nil
		}
		if len(batch) == 0 {
			continue
		}

		if err := o.syncPass(ctx, batch); err != nil {
			if fserrors.IsFatal(err) {
				return err
			}
			logging.Errorf(nil, "sync pass failed, continuing: %v", err)
		}

		if o.queue.Len() == 0 && o.onComplete != nil {
			o.onComplete()
		}
	}
}

// Close stops the sync loop, waiting for Run to return. It is safe to
// call multiple times and from a different goroutine than Run.
func (o *Orchestrator) Close() error {
	o.closeOne.Do(func() { close(o.done) })
	o.closeWg.Wait()
	return o.client.Close()
}

// initialScan implements spec.md §4.8's INITIAL_SCAN state: FullScan every
// mapping into its VFS, then enqueue every local path under the root so
// the first SYNCING pass diffs everything.
func (o *Orchestrator) initialScan(ctx context.Context) error {
	for _, st := range o.states {
		entries, err := o.client.FullScan(ctx, st.mapping.RemoteDest)
		if err != nil {
			return fserrors.NewRPCError(err)
		}

		vfsEntries := make([]vfs.Entry, len(entries))
		for i, e := range entries {
			vfsEntries[i] = vfs.Entry{Sub: e.Sub, Sig: e.Sig}
		}
		vfs.ApplyFullScan(st.vfs, vfsEntries)

		paths, err := everyPathUnder(st.root)
		if err != nil {
			return fserrors.NewScanFailure(err)
		}
		if len(paths) > 0 {
			o.queue.Push(paths)
		}
	}
	return nil
}

func everyPathUnder(root string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // per-path failure: skip, not fatal
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// syncPass implements spec.md §4.8's SYNCING state for one debounced
// batch: canonicalize, filter, scan, plan, apply metadata, stream content.
// A per-mapping recoverable failure re-enqueues the whole original batch
// and moves on to the next mapping, per the design note in spec.md §9. A fatal RpcException stops the pass immediately — spec.md §4.8 says
// it "is fatal and stops the loop", and the RPC transport it reports on is
// shared by every remaining mapping, so there is nothing left to usefully
// sync this pass.
func (o *Orchestrator) syncPass(ctx context.Context, batch []string) error {
	perMapping := o.groupByMapping(batch)

	for st, subs := range perMapping {
		if err := o.syncMapping(ctx, st, subs, batch); err != nil {
			if fserrors.IsFatal(err) {
				return err
			}
			logging.Errorf(st.mapping.Name, "mapping sync failed, re-enqueued: %v", err)
		}
	}
	return nil
}

// groupByMapping canonicalizes each raw event path, drops duplicates and
// anything outside a known mapping root or matched by the skip predicate,
// and buckets the survivors into per-mapping candidate subpath sets.
func (o *Orchestrator) groupByMapping(batch []string) map[*mappingState][]dfs.SubPath {
	seen := make(map[*mappingState]map[string]dfs.SubPath)
	for _, raw := range batch {
		abs := filepath.Clean(raw)
		st, sub, ok := o.resolveMapping(abs)
		if !ok {
			continue
		}
		if o.skipFn(abs, st.root) {
			continue
		}
		if seen[st] == nil {
			seen[st] = make(map[string]dfs.SubPath)
		}
		seen[st][sub.String()] = sub
	}

	out := make(map[*mappingState][]dfs.SubPath, len(seen))
	for st, m := range seen {
		subs := make([]dfs.SubPath, 0, len(m))
		for _, sub := range m {
			subs = append(subs, sub)
		}
		out[st] = subs
	}
	return out
}

// resolveMapping finds the mapping whose root contains abs, and the
// subpath of abs relative to that root.
func (o *Orchestrator) resolveMapping(abs string) (*mappingState, dfs.SubPath, bool) {
	var best *mappingState
	for root, st := range o.byRoot {
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			continue
		}
		if best == nil || len(st.root) > len(best.root) {
			best = st
		}
	}
	if best == nil {
		return nil, dfs.SubPath(""), false
	}
	rel, err := filepath.Rel(best.root, abs)
	if err != nil {
		return nil, dfs.SubPath(""), false
	}
	if rel == "." {
		return best, dfs.NewSubPath(), true
	}
	sub, ok := dfs.ParseSubPath(filepath.ToSlash(rel))
	if !ok {
		return nil, dfs.SubPath(""), false
	}
	return best, sub, true
}

func (o *Orchestrator) syncMapping(ctx context.Context, st *mappingState, subs []dfs.SubPath, originalBatch []string) error {
	sigs, err := st.scanner.Scan(ctx, subs)
	if err != nil {
		o.queue.Push(originalBatch)
		return fserrors.NewScanFailure(err)
	}

	triples := plan.Diff(sigs, st.vfs.Signature)
	if len(triples) == 0 {
		return nil
	}

	actionCount := 0
	for _, t := range triples {
		for _, action := range metasync.Actions(st.mapping.RemoteDest, t) {
			if err := o.client.Send(ctx, action); err != nil {
				o.queue.Push(originalBatch)
				return fserrors.NewRPCError(err)
			}
			st.vfs.ApplyAction(action)
			actionCount++
			if actionCount%drainEveryActions == 0 {
				if err := o.client.Drain(ctx); err != nil {
					return fserrors.NewRPCError(err)
				}
			}
		}

		if t.Local != nil && t.Local.Kind == signature.KindFile {
			abs := filepath.Join(append([]string{st.root}, t.Sub.Segments()...)...)
			postMeta := st.vfs.Signature(t.Sub)
			if err := st.streamer.Stream(ctx, abs, st.mapping.RemoteDest, t.Sub, t.Local, postMeta); err != nil {
				o.queue.Push(originalBatch)
				return fserrors.NewStreamFailure(err)
			}
		}
	}

	return o.client.Drain(ctx)
}
