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


package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/poiesic/statreg"
	"github.com/poiesic/statreg/core"
	"github.com/poiesic/statreg/ingestion"
)

var subjects = []string{
	"Speed", "Parking", "Noise", "Zoning", "Water Use", "Firearms", "Tenancy",
	"Food Safety", "Building Code", "Signage", "Animal Control", "Fireworks",
	"Alcohol Sales", "Curfew", "Waste Disposal", "Street Vending", "Emissions",
}

var effects = []struct {
	kind   string
	phrase string
}{
	{"prohibition", "No person shall engage in %s activity without a permit"},
	{"obligation", "Every operator must report %s incidents within ten days"},
	{"permission", "A licensed holder may conduct %s activity during daylight hours"},
	{"penalty", "A violation of the %s provisions is punishable by a fine"},
}

var jurisdictions = []string{"US-CA", "US-NY", "US-TX", "US-WA", "DE", "FR"}

var tags = []string{"civil", "criminal", "municipal", "traffic", "environment", "commerce"}

var (
	dbPath = flag.String("db", "./statute_db", "database directory to seed")
	out    = flag.String("out", "", "write a YAML fixture here instead of seeding a database")
	count  = flag.Int("n", 1000, "number of statutes to generate")
	seed   = flag.Uint64("seed", 42, "random seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// generate builds n reproducible statutes from the word lists above.
func generate(n int, rng *rand.Rand) []*core.StatuteEntry {
	entries := make([]*core.StatuteEntry, n)
	for i := range entries {
		subject := subjects[rng.IntN(len(subjects))]
		effect := effects[rng.IntN(len(effects))]
		jurisdiction := jurisdictions[rng.IntN(len(jurisdictions))]

		entryTags := []string{tags[rng.IntN(len(tags))]}
		if rng.IntN(3) == 0 {
			entryTags = append(entryTags, tags[rng.IntN(len(tags))])
		}

		entries[i] = &core.StatuteEntry{
			Statute: core.Statute{
				ID:    fmt.Sprintf("%s-%05d", jurisdiction, i),
				Title: fmt.Sprintf("%s Regulation %d", subject, i),
				Effect: core.Effect{
					Kind:        effect.kind,
					Description: fmt.Sprintf(effect.phrase, subject),
				},
				Preconditions: []core.Precondition{
					{Kind: "jurisdiction", Expression: "within " + jurisdiction},
				},
			},
			Jurisdiction: jurisdiction,
			Tags:         entryTags,
			Status:       core.Statuses[rng.IntN(len(core.Statuses))],
		}
	}
	return entries
}

func main() {
	entries := generate(*count, rand.New(rand.NewPCG(*seed, *seed)))

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := ingestion.WriteFixture(f, entries); err != nil {
			panic(err)
		}
		slog.Info("wrote fixture", "path", *out, "statutes", len(entries))
		return
	}

	ctx := context.Background()
	db, err := statreg.NewDatabase(ctx, *dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithProgress(os.Stderr))
	if err != nil {
		panic(err)
	}
	if _, err := pipeline.Ingest(ctx, entries); err != nil {
		panic(err)
	}
	if err := db.Save(ctx); err != nil {
		panic(err)
	}
}
