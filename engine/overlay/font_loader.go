package overlay

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// FontState describes the progress of a FontLoader request.
type FontState int

const (
	// FontStateIdle means no font has been requested.
	FontStateIdle FontState = iota

	// FontStatePending means a request is running on the worker pool.
	FontStatePending

	// FontStateReady means the font resolved and is available from Font.
	FontStateReady

	// FontStateFailed means resolution failed; Err reports why.
	FontStateFailed
)

type fontResult struct {
	font *Font
	err  error
}

// fontRequest is one Load call. Once abandoned, a result that arrives is closed instead of delivered.
type fontRequest struct {
	mu        sync.Mutex
	abandoned bool
	results   chan fontResult
}

func (r *fontRequest) deliver(res fontResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.abandoned {
		if res.font != nil {
			_ = res.font.Close()
		}
		return
	}
	r.results <- res
}

func (r *fontRequest) abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned = true
	select {
	case res := <-r.results:
		if res.font != nil {
			_ = res.font.Close()
		}
	default:
	}
}

// FontLoader resolves a named font on a worker pool and hands the result back to the frame thread.
// Load and Poll must be called from the same goroutine.
type FontLoader struct {
	pool     worker.DynamicWorkerPool
	resolver FontResolver
	pending  *fontRequest

	nextID int
	state  FontState
	font   *Font
	err    error
}

// NewFontLoader creates a FontLoader that submits resolution tasks to pool.
//
// Parameters:
//   - pool: the worker pool that runs resolution
//   - resolver: the font resolver
//
// Returns:
//   - *FontLoader: the loader
func NewFontLoader(pool worker.DynamicWorkerPool, resolver FontResolver) *FontLoader {
	return &FontLoader{
		pool:     pool,
		resolver: resolver,
	}
}

// Load starts resolving name. An earlier request still in flight is superseded and its font closed
// when it arrives.
//
// Parameters:
//   - name: the font name passed to the resolver
func (l *FontLoader) Load(name string) {
	l.dropPending()
	l.nextID++
	l.state = FontStatePending
	l.err = nil

	resolver := l.resolver
	req := &fontRequest{results: make(chan fontResult, 1)}
	l.pending = req
	l.pool.SubmitTask(worker.Task{
		ID: l.nextID,
		Do: func() (any, error) {
			f, err := resolver.Resolve(name)
			if err != nil {
				err = fmt.Errorf("overlay: resolve font %q: %w", name, err)
			}
			req.deliver(fontResult{font: f, err: err})
			return f, err
		},
	})
}

func (l *FontLoader) dropPending() {
	if l.pending != nil {
		l.pending.abandon()
		l.pending = nil
	}
}

// Poll collects a finished request without blocking and returns the current state.
//
// Returns:
//   - FontState: the loader state
func (l *FontLoader) Poll() FontState {
	if l.pending == nil {
		return l.state
	}
	select {
	case res := <-l.pending.results:
		l.pending = nil
		if res.err != nil {
			l.state, l.err = FontStateFailed, res.err
			return l.state
		}
		if l.font != nil {
			_ = l.font.Close()
		}
		l.state, l.font = FontStateReady, res.font
	default:
	}
	return l.state
}

// Font returns the most recently resolved font, or nil.
func (l *FontLoader) Font() *Font {
	return l.font
}

// Err returns the error of the most recent failed request.
func (l *FontLoader) Err() error {
	return l.err
}

// Close releases the resolved font. A request still in flight is abandoned and its font closed.
func (l *FontLoader) Close() error {
	l.dropPending()
	l.state = FontStateIdle
	if l.font == nil {
		return nil
	}
	err := l.font.Close()
	l.font = nil
	return err
}
