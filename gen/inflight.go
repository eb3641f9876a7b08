package gen

import (
	"fmt"
	"sync"

	"github.com/randalmurphal/specflow"
)

// inflight tracks scope/stage pairs with a generation in progress.
type inflight struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newInflight() *inflight {
	return &inflight{keys: make(map[string]bool)}
}

func inflightKey(scopeID string, stage specflow.Stage) string {
	return fmt.Sprintf("%s/%s", scopeID, stage)
}

// tryAcquire reserves the scope/stage pair. It reports false when a
// generation is already running there.
func (g *inflight) tryAcquire(scopeID string, stage specflow.Stage) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := inflightKey(scopeID, stage)
	if g.keys[key] {
		return false
	}
	g.keys[key] = true
	return true
}

func (g *inflight) release(scopeID string, stage specflow.Stage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, inflightKey(scopeID, stage))
}
