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


// Package ingestion loads statutes into a registry in bulk.
//
// Statutes arrive as YAML fixtures:
//
//	statutes:
//	  - id: ca-veh-22350
//	    title: Basic Speed Law
//	    effect:
//	      kind: prohibition
//	      description: No person shall drive at a speed greater than is reasonable
//	    preconditions:
//	      - kind: context
//	        expression: on a highway
//	    jurisdiction: US-CA
//	    tags: [traffic, vehicle]
//	    status: active
//
// LoadFixture decodes a fixture into entries; a Pipeline splits them into
// chunks and commits each chunk with registry.BatchRegister, reporting
// progress as it goes.
//
// # Usage
//
//	entries, err := ingestion.LoadFixtureFile("statutes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline, err := ingestion.NewPipeline(reg,
//	    ingestion.WithBatchSize(500),
//	    ingestion.WithPolicy(registry.ContinueOnError),
//	    ingestion.WithProgress(os.Stderr),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := pipeline.Ingest(ctx, entries)
package ingestion
