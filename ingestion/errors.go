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

import "errors"

var (
	// ErrRegistryRequired is returned when a pipeline is built without a registry.
	ErrRegistryRequired = errors.New("registry required")

	// ErrInvalidBatchSize is returned when the batch size is less than 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")

	// ErrInvalidFixture is returned when a statute fixture cannot be decoded.
	ErrInvalidFixture = errors.New("invalid statute fixture")
)
