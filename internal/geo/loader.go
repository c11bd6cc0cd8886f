package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"golang.org/x/sync/singleflight"
)

// Loader resolves boundary files through a Source. Parsed boundaries are cached by path
// and concurrent loads of the same path share one read.
type Loader struct {
	source      Source
	defaultFile string
	catalogue   string
	timeout     time.Duration

	group singleflight.Group

	mu      sync.RWMutex
	cache   map[string]*Boundary
	entries []dto.KelurahanEntry
}

type LoaderOptions struct {
	DefaultFile   string
	CatalogueFile string
	Timeout       time.Duration
}

func NewLoader(source Source, opts LoaderOptions) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Loader{
		source:      source,
		defaultFile: opts.DefaultFile,
		catalogue:   opts.CatalogueFile,
		timeout:     opts.Timeout,
		cache:       make(map[string]*Boundary),
	}
}

// Resolution is the outcome of walking the fallback chain. Boundary is nil when no file in
// the chain could be loaded, which leaves the map without an overlay.
type Resolution struct {
	Kelurahan string
	RW        string
	Path      string
	Fallback  bool
	Boundary  *Boundary
}

// Load returns the boundary at path. A cancelled ctx stops the wait, not the shared read,
// so other callers waiting on the same path still get the result.
func (l *Loader) Load(ctx context.Context, path string) (*Boundary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b, ok := l.cached(path); ok {
		return b, nil
	}

	ch := l.group.DoChan(path, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		data, err := l.source.Read(loadCtx, strings.TrimPrefix(path, DataPrefix))
		if err != nil {
			return nil, err
		}
		b, err := Parse(path, data)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[path] = b
		l.mu.Unlock()
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Boundary), nil
	}
}

// Resolve tries the RW file, then the kelurahan file, then the citywide default. Any load
// failure moves on to the next candidate; cancellation does not.
func (l *Loader) Resolve(ctx context.Context, kelurahan, rw string) (*Resolution, error) {
	res := &Resolution{Kelurahan: kelurahan, RW: rw}

	for i, path := range fallbackChain(kelurahan, rw, l.defaultFile) {
		b, err := l.Load(ctx, path)
		if err == nil {
			res.Path = path
			res.Fallback = i > 0
			res.Boundary = b
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("[Geo] Boundary %s unavailable: %v", path, err)
	}

	return res, nil
}

func (l *Loader) cached(path string) (*Boundary, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.cache[path]
	return b, ok
}

// Forget drops a cached path, e.g. after a boundary file is replaced.
func (l *Loader) Forget(path string) {
	l.mu.Lock()
	delete(l.cache, path)
	l.mu.Unlock()
}

// Catalogue reads the kelurahan -> RW list shipped next to the boundary files. Like Load,
// the read is shared and outlives a cancelled caller.
func (l *Loader) Catalogue(ctx context.Context) ([]dto.KelurahanEntry, error) {
	if l.catalogue == "" {
		return []dto.KelurahanEntry{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	entries := l.entries
	l.mu.RUnlock()
	if entries != nil {
		return entries, nil
	}

	ch := l.group.DoChan("catalogue:"+l.catalogue, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		data, err := l.source.Read(loadCtx, l.catalogue)
		if err != nil {
			return nil, err
		}
		var entries []dto.KelurahanEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("geo: parse catalogue: %w", err)
		}
		if entries == nil {
			entries = []dto.KelurahanEntry{}
		}
		l.mu.Lock()
		l.entries = entries
		l.mu.Unlock()
		return entries, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]dto.KelurahanEntry), nil
	}
}
