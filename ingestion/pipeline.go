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
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/statreg/core"
	"github.com/poiesic/statreg/registry"
)

// DefaultBatchSize is the number of entries committed per BatchRegister call.
const DefaultBatchSize = 256

// Registrar is the part of the registry a pipeline writes through.
type Registrar interface {
	BatchRegister(entries []*core.StatuteEntry, policy registry.BatchPolicy) (*registry.BatchResult, error)
}

// Pipeline loads entries into a registry in fixed-size chunks.
type Pipeline struct {
	registry  Registrar
	batchSize int
	policy    registry.BatchPolicy
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets how many entries each chunk holds.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithPolicy sets the batch policy applied to every chunk. Under
// AbortOnError the pipeline also stops at the first failing chunk.
// Default is registry.AbortOnError.
func WithPolicy(policy registry.BatchPolicy) Option {
	return func(p *Pipeline) error {
		p.policy = policy
		return nil
	}
}

// WithProgress enables a progress line written to w after every chunk.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline writing into reg.
func NewPipeline(reg Registrar, opts ...Option) (*Pipeline, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}

	p := &Pipeline{
		registry:  reg,
		batchSize: DefaultBatchSize,
		policy:    registry.AbortOnError,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Report summarizes an ingestion run. Failure indexes refer to positions in
// the full input, not within a chunk.
type Report struct {
	Total     int
	Committed int
	Failures  []registry.ItemResult
}

// Ingest commits entries chunk by chunk. Cancelling ctx stops the run
// between chunks; chunks already committed stay committed.
// The error is nil when every entry committed. Otherwise it is ctx.Err() or
// a *registry.BatchError covering the whole run.
func (p *Pipeline) Ingest(ctx context.Context, entries []*core.StatuteEntry) (*Report, error) {
	report := &Report{Total: len(entries)}

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(entries))
		tracker.Start()
		defer tracker.Finish()
	}

	for start := 0; start < len(entries); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("ingestion canceled", "committed", report.Committed, "remaining", len(entries)-start)
			return report, err
		}

		end := min(start+p.batchSize, len(entries))
		result, err := p.registry.BatchRegister(entries[start:end], p.policy)
		if result != nil {
			report.Committed += result.Committed
			for _, item := range result.Failed() {
				item.Index += start
				report.Failures = append(report.Failures, item)
			}
			if tracker != nil {
				tracker.Add(result.Committed, len(result.Failed()))
			}
		}

		if err != nil {
			var batchErr *registry.BatchError
			if !errors.As(err, &batchErr) {
				// Registry closed or similar; nothing else can commit.
				return report, err
			}
			p.logger.Debug("chunk finished with failures", "start", start, "failed", len(batchErr.Failures))
			if p.policy == registry.AbortOnError {
				break
			}
		}
	}

	p.logger.Info("ingestion finished", "total", report.Total,
		"committed", report.Committed, "failed", len(report.Failures))
	if len(report.Failures) == 0 {
		return report, nil
	}
	return report, &registry.BatchError{
		Policy:    p.policy,
		Committed: report.Committed,
		Failures:  report.Failures,
	}
}
