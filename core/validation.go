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


package core

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError describes one rule a Statute violates.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is the full list of problems found by Statute.Validate.
// It is forwarded verbatim by the registry when validation is enforced.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "invalid statute: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is(err, ErrInvalidStatute) match any validation failure.
func (errs ValidationErrors) Is(target error) bool {
	return target == ErrInvalidStatute
}

// Validate checks the statute against the structural rules the registry
// relies on. It does not interpret legal meaning.
//
// Validation rules:
//   - ID must not be empty or contain whitespace
//   - Title must not be empty
//   - Effect.Description must not be empty
//   - Every precondition must have an Expression
//
// Returns nil when the statute is valid.
func (s *Statute) Validate() ValidationErrors {
	var errs ValidationErrors

	switch {
	case s.ID == "":
		errs = append(errs, ValidationError{Field: "id", Message: "must not be empty"})
	case strings.IndexFunc(s.ID, unicode.IsSpace) >= 0:
		errs = append(errs, ValidationError{Field: "id", Message: "must not contain whitespace"})
	}

	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "must not be empty"})
	}

	if strings.TrimSpace(s.Effect.Description) == "" {
		errs = append(errs, ValidationError{Field: "effect.description", Message: "must not be empty"})
	}

	for i, p := range s.Preconditions {
		if strings.TrimSpace(p.Expression) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("preconditions[%d].expression", i),
				Message: "must not be empty",
			})
		}
	}

	return errs
}

// ValidateStatus validates that a Status has a declared value.
func ValidateStatus(status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
	return nil
}
