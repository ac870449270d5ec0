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


package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/statreg/core"
)

// BatchPolicy decides how a batch reacts to a failing item.
type BatchPolicy int

const (
	// AbortOnError stops at the first failing item. Items before it stay committed.
	AbortOnError BatchPolicy = iota
	// ContinueOnError applies every item and reports each outcome.
	ContinueOnError
)

func (p BatchPolicy) String() string {
	switch p {
	case AbortOnError:
		return "abort-on-error"
	case ContinueOnError:
		return "continue-on-error"
	default:
		return "unknown"
	}
}

// ItemResult is the outcome of one batch item.
type ItemResult struct {
	Index int                // Position in the input
	ID    string             // Statute ID, when known
	Entry *core.StatuteEntry // Committed entry on success
	Err   error              // Failure, nil on success
}

// BatchResult reports the items a batch processed, in input order.
// Under AbortOnError, Items ends at the failing item.
type BatchResult struct {
	Items     []ItemResult
	Committed int
}

// Failed returns the items that did not commit.
func (r *BatchResult) Failed() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// BatchError aggregates the failures of a batch. errors.Is and errors.As
// see through it to every item error.
type BatchError struct {
	Policy    BatchPolicy
	Committed int
	Failures  []ItemResult
}

func (e *BatchError) Error() string {
	first := e.Failures[0]
	if e.Policy == AbortOnError {
		return fmt.Sprintf("batch aborted at item %d (%s) after %d committed: %v",
			first.Index, first.ID, e.Committed, first.Err)
	}
	return fmt.Sprintf("batch finished with %d failed and %d committed, first at item %d (%s): %v",
		len(e.Failures), e.Committed, first.Index, first.ID, first.Err)
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// BatchUpdate is one item of BatchUpdate.
type BatchUpdate struct {
	ID     string
	Update core.EntryUpdate
}

// BatchRegister registers entries in input order under policy. Each entry
// commits independently; there is no rollback of earlier successes.
// The error is nil when every item committed, otherwise a *BatchError.
func (r *Registry) BatchRegister(entries []*core.StatuteEntry, policy BatchPolicy) (*BatchResult, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	var preErrs []error
	if r.cfg.ValidateOnWrite {
		var err error
		preErrs, err = r.prevalidate(len(entries), func(i int) *core.Statute {
			if entries[i] == nil {
				return nil
			}
			return &entries[i].Statute
		})
		if err != nil {
			return nil, err
		}
	}

	return r.runBatch("register", len(entries), policy, func(i int) (string, *core.StatuteEntry, error) {
		var id string
		if entries[i] != nil {
			id = entries[i].ID()
		}
		if preErrs != nil && preErrs[i] != nil {
			return id, nil, preErrs[i]
		}
		entry, err := r.register(entries[i], false)
		return id, entry, err
	})
}

// BatchUpdate applies updates in input order under policy, with the same
// commit and reporting semantics as BatchRegister.
func (r *Registry) BatchUpdate(updates []BatchUpdate, policy BatchPolicy) (*BatchResult, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	var preErrs []error
	if r.cfg.ValidateOnWrite {
		var err error
		preErrs, err = r.prevalidate(len(updates), func(i int) *core.Statute {
			if updates[i].Update.Statute == nil {
				return nil
			}
			s := updates[i].Update.Statute.Clone()
			s.ID = updates[i].ID
			return &s
		})
		if err != nil {
			return nil, err
		}
	}

	return r.runBatch("update", len(updates), policy, func(i int) (string, *core.StatuteEntry, error) {
		id := updates[i].ID
		if preErrs != nil && preErrs[i] != nil {
			return id, nil, preErrs[i]
		}
		entry, err := r.update(id, updates[i].Update, false)
		return id, entry, err
	})
}

// runBatch applies items sequentially; apply takes the exclusive lock
// itself, once per item.
func (r *Registry) runBatch(op string, n int, policy BatchPolicy, apply func(i int) (string, *core.StatuteEntry, error)) (*BatchResult, error) {
	result := &BatchResult{Items: make([]ItemResult, 0, n)}
	var failures []ItemResult

	for i := range n {
		id, entry, err := apply(i)
		item := ItemResult{Index: i, ID: id, Entry: entry, Err: err}
		result.Items = append(result.Items, item)

		if err != nil {
			failures = append(failures, item)
			r.logger.Warn("batch item failed", "op", op, "policy", policy, "index", i, "id", id, "err", err)
			if policy == AbortOnError || errors.Is(err, ErrClosed) {
				break
			}
			continue
		}
		result.Committed++
	}

	r.logger.Debug("batch finished", "op", op, "policy", policy,
		"items", n, "committed", result.Committed, "failed", len(failures))
	if len(failures) == 0 {
		return result, nil
	}
	return result, &BatchError{Policy: policy, Committed: result.Committed, Failures: failures}
}

// prevalidate runs Statute.Validate for every item on the worker pool and
// returns the per-item errors by index. Items whose statute func returns nil
// are skipped.
func (r *Registry) prevalidate(n int, statute func(i int) *core.Statute) ([]error, error) {
	errs := make([]error, n)
	var wg sync.WaitGroup

	for i := range n {
		s := statute(i)
		if s == nil {
			continue
		}
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			errs[i] = validateStatute(s)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			if errors.Is(err, ants.ErrPoolClosed) {
				return nil, ErrClosed
			}
			return nil, err
		}
	}

	wg.Wait()
	return errs, nil
}
