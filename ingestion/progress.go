// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes a single updating progress line for a bulk load.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	done      int
	failed    int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total items writing to writer
// (typically os.Stderr).
func NewProgressTracker(writer io.Writer, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		total:  total,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.done = 0
	p.failed = 0
}

// Add records a processed chunk and reports the new totals.
func (p *ProgressTracker) Add(committed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.done = min(p.done+committed+failed, p.total)
	p.failed += failed
	p.report()
}

// Finish prints the final progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := float64(p.done) / time.Since(p.startTime).Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rLoaded: %d/%d (%.1f%%), %d failed - %.1f statutes/s",
		p.done, p.total, percentage, p.failed, rate)
}
