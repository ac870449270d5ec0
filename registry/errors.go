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

import "errors"

var (
	// ErrDuplicateID indicates a register collided with an existing current entry.
	ErrDuplicateID = errors.New("duplicate statute id")

	// ErrNotFound indicates the ID has no current entry, or was never registered.
	ErrNotFound = errors.New("statute not found")

	// ErrInvalidVersion indicates a version outside the recorded history.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrValidation wraps validation failures reported by the statute itself.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidEntry indicates a nil entry or one without an ID.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrIDMismatch indicates an update carried a statute with a different ID.
	ErrIDMismatch = errors.New("statute id does not match entry id")

	// ErrClosed indicates the registry has been closed.
	ErrClosed = errors.New("registry is closed")

	// ErrNotEmpty indicates a restore into a registry that already holds state.
	ErrNotEmpty = errors.New("registry is not empty")

	// ErrCorruptSnapshot indicates a snapshot whose chains are inconsistent.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrInvalidConfig indicates a configuration value out of range.
	ErrInvalidConfig = errors.New("invalid registry config")
)
