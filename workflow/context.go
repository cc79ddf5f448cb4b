package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// REQUEST CONTEXT - Per-request accumulated state
// =============================================================================

// StageOutput is one completed stage's result in the context trail.
type StageOutput struct {
	Stage  string
	Output string
}

// RequestContext is created once per incoming request and owned by it:
// never shared or mutated concurrently across requests. The trail is
// append-only - a stage's output is never overwritten by a later stage.
type RequestContext struct {
	RequestID       string
	OriginalRequest string
	trail           []StageOutput
}

func newRequestContext(request string) *RequestContext {
	return &RequestContext{
		RequestID:       "REQ-" + uuid.NewString(),
		OriginalRequest: request,
	}
}

func (rc *RequestContext) appendStage(stage, output string) {
	rc.trail = append(rc.trail, StageOutput{Stage: stage, Output: output})
}

// Trail returns a copy of the ordered stage outputs so far.
func (rc *RequestContext) Trail() []StageOutput {
	out := make([]StageOutput, len(rc.trail))
	copy(out, rc.trail)
	return out
}

// =============================================================================
// USAGE COUNTERS - Process-lifetime capability accounting
// =============================================================================

// UsageCounters counts completed capability invocations per stage name.
// Counts are monotonic for the coordinator's lifetime and never reset
// mid-process. Skipped stages are never counted.
type UsageCounters struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewUsageCounters() *UsageCounters {
	return &UsageCounters{counts: make(map[string]int)}
}

func (u *UsageCounters) increment(stage string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.counts[stage]++
}

// Count returns the invocation count for one stage.
func (u *UsageCounters) Count(stage string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[stage]
}

// Snapshot returns a copy of all counters.
func (u *UsageCounters) Snapshot() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]int, len(u.counts))
	for stage, n := range u.counts {
		out[stage] = n
	}
	return out
}
