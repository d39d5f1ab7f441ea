package scanner

import (
	"context"
	"net/http"
	"strings"
	"sync"
)

// IsDirectoryLike reports whether a response looks like a browsable
// directory: any redirect, or a 200 whose last segment has no dot. The
// segment is whatever follows the final slash of the raw URL, so a bare host
// such as http://admin.x.com counts as its own segment and a trailing slash
// leaves an empty one.
func IsDirectoryLike(status int, rawURL string) bool {
	if status >= 300 && status < 400 {
		return true
	}
	if status != http.StatusOK {
		return false
	}
	return !strings.Contains(lastSegment(rawURL), ".")
}

// DirectoryBase normalizes a URL to end in exactly one slash.
func DirectoryBase(rawURL string) string {
	return strings.TrimRight(rawURL, "/") + "/"
}

func lastSegment(rawURL string) string {
	return rawURL[strings.LastIndex(rawURL, "/")+1:]
}

// Frontier runs passes on their own goroutines and tracks them until the
// whole tree is exhausted. Passes never wait on their children.
type Frontier struct {
	ctx      context.Context
	maxDepth int
	run      func(context.Context, Pass)

	wg sync.WaitGroup
	mu sync.Mutex

	// seen maps a base to the shallowest depth it was scheduled at.
	seen map[string]int
}

func NewFrontier(ctx context.Context, maxDepth int, run func(context.Context, Pass)) *Frontier {
	return &Frontier{
		ctx:      ctx,
		maxDepth: maxDepth,
		run:      run,
		seen:     make(map[string]int),
	}
}

// Submit schedules a pass unless its base was already scheduled at the same
// or a shallower depth, or the scan has been cancelled. A base reached again
// closer to the root is scanned again so its subtree gets the deeper
// recursion budget.
func (f *Frontier) Submit(p Pass) bool {
	if f.ctx.Err() != nil {
		return false
	}

	f.mu.Lock()
	if depth, ok := f.seen[p.Base]; ok && depth <= p.Depth {
		f.mu.Unlock()
		return false
	}
	f.seen[p.Base] = p.Depth
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.run(f.ctx, p)
	}()
	return true
}

// Descend submits a child pass for a reported result found by parent when
// the result is directory-like and the depth limit allows it.
func (f *Frontier) Descend(parent Pass, status int, rawURL string) bool {
	if parent.Depth >= f.maxDepth || !IsDirectoryLike(status, rawURL) {
		return false
	}
	return f.Submit(Pass{Base: DirectoryBase(rawURL), Depth: parent.Depth + 1})
}

// Wait blocks until every submitted pass, and every pass those spawned, has
// returned.
func (f *Frontier) Wait() {
	f.wg.Wait()
}
