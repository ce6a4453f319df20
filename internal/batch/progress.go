package batch

import "sync"

// Snapshot is a consistent view of the batch progress.
type Snapshot struct {
	RunID      string `json:"run_id"`
	Documents  int    `json:"documents"`
	Done       int    `json:"done"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Blocks     int    `json:"blocks"`
	BlocksDone int    `json:"blocks_done"`
	InProgress int    `json:"in_progress"`
	Cancelled  bool   `json:"cancelled"`
}

// Progress aggregates the advancement of every worker.
type Progress struct {
	mu sync.Mutex
	s  Snapshot
}

func newProgress(runID string, documents int) *Progress {
	return &Progress{s: Snapshot{RunID: runID, Documents: documents}}
}

// Blocks returns a callback that adds handled-block increments for one
// document whose block count is total.
func (p *Progress) Blocks(total int) func(delta int) {
	p.mu.Lock()
	p.s.Blocks += total
	p.s.InProgress++
	p.mu.Unlock()
	return func(delta int) {
		p.mu.Lock()
		p.s.BlocksDone += delta
		p.mu.Unlock()
	}
}

// finish records the end of one document and returns the new snapshot.
func (p *Progress) finish(o Outcome, started bool) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if started {
		p.s.InProgress--
	}
	if o.Cancelled {
		return p.s
	}
	p.s.Done++
	switch {
	case o.Skipped:
		p.s.Skipped++
	case !o.Success:
		p.s.Failed++
	}
	return p.s
}

func (p *Progress) cancel() {
	p.mu.Lock()
	p.s.Cancelled = true
	p.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.s
}
