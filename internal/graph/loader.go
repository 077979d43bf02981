package graph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// BuildFunc produces a Navigator. It runs once on the loader goroutine.
type BuildFunc func(ctx context.Context) (*Navigator, error)

// Loader builds a Navigator in the background and signals readiness exactly
// once by closing a channel.
type Loader struct {
	ready chan struct{}
	once  sync.Once
	nav   *Navigator
	err   error
}

// Load starts build on a new goroutine.
func Load(ctx context.Context, build BuildFunc, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	l := &Loader{ready: make(chan struct{})}
	go func() {
		start := time.Now()
		nav, err := build(ctx)
		if err != nil {
			log.Error("navigation load failed", "error", err)
		} else {
			log.Info("navigation graph ready",
				"nodes", humanize.Comma(int64(nav.Nodes().Len())),
				"vertices", humanize.Comma(int64(nav.Graph().NumVertices())),
				"edges", humanize.Comma(int64(nav.Graph().NumEdges())),
				"size", humanize.Bytes(footprint(nav)),
				"elapsed", time.Since(start).Round(time.Millisecond),
			)
		}
		l.finish(nav, err)
	}()
	return l
}

// LoadDir reads a dataset directory in the background and builds a Navigator
// from it.
func LoadDir(ctx context.Context, dir string, opts Options, log *slog.Logger) *Loader {
	return Load(ctx, func(ctx context.Context) (*Navigator, error) {
		ds, err := ReadDataset(ctx, dir)
		if err != nil {
			return nil, err
		}
		return NewNavigator(ds, opts, log)
	}, log)
}

func (l *Loader) finish(nav *Navigator, err error) {
	l.once.Do(func() {
		l.nav, l.err = nav, err
		close(l.ready)
	})
}

// Ready is closed once loading has finished, successfully or not.
func (l *Loader) Ready() <-chan struct{} { return l.ready }

// Wait blocks until the navigator is built or ctx is done. A load failure is
// returned as is; callers treat it as fatal.
func (l *Loader) Wait(ctx context.Context) (*Navigator, error) {
	select {
	case <-l.ready:
		return l.nav, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func footprint(n *Navigator) uint64 {
	edges := uint64(n.Graph().NumEdges()) * 8
	offsets := uint64(n.Graph().NumVertices()+1) * 4
	nodes := uint64(n.Nodes().Len()) * 48
	return edges + offsets + nodes
}
