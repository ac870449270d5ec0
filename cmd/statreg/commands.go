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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/statreg"
	"github.com/poiesic/statreg/core"
	"github.com/poiesic/statreg/ingestion"
	"github.com/poiesic/statreg/registry"
	"github.com/urfave/cli/v2"
)

// openDatabase opens the database named by --db with the registry
// configured from the global and command flags.
func openDatabase(c *cli.Context) (*statreg.Database, error) {
	cfg := registry.NewConfig(
		registry.WithCacheSize(c.Int("cache-size")),
		registry.WithValidateOnWrite(c.Bool("validate")),
	)
	db, err := statreg.NewDatabase(c.Context, c.String("db"), statreg.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func loadCommand(c *cli.Context) error {
	ctx := c.Context

	entries, err := ingestion.LoadFixtureFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	policy := registry.AbortOnError
	if c.Bool("continue-on-error") {
		policy = registry.ContinueOnError
	}
	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithPolicy(policy),
	}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(os.Stderr))
	}

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}

	report, ingestErr := pipeline.Ingest(ctx, entries)
	if report.Committed > 0 {
		// Whatever committed is kept, even when the load as a whole failed.
		if err := db.Save(ctx); err != nil {
			return fmt.Errorf("failed to save database: %w", err)
		}
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Loaded %s of %s statutes\n",
		humanize.Comma(int64(report.Committed)), humanize.Comma(int64(report.Total)))
	for _, f := range report.Failures {
		fmt.Fprintf(out, "  #%d %s: %v\n", f.Index, f.ID, f.Err)
	}

	var batchErr *registry.BatchError
	if errors.As(ingestErr, &batchErr) {
		return fmt.Errorf("%d statutes failed to load", len(batchErr.Failures))
	}
	return ingestErr
}

func exportCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	out := c.App.Writer
	if path := c.String("file"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return ingestion.WriteFixture(out, db.Registry().List())
}

func getCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	id := c.String("id")
	if v := c.Uint64("version"); v > 0 {
		rec, err := db.Registry().GetVersion(id, v)
		if err != nil {
			return err
		}
		printEntry(c.App.Writer, &rec.Entry)
		fmt.Fprintf(c.App.Writer, "Recorded:      %s\n", formatTime(rec.RecordedAt))
		fmt.Fprintf(c.App.Writer, "Digest:        %s\n", rec.Digest)
		return nil
	}

	entry, err := db.Registry().Get(id)
	if err != nil {
		return err
	}
	printEntry(c.App.Writer, entry)
	return nil
}

func historyCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Registry().History(c.String("id"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tRECORDED\tSTATUS\tDIGEST\tTITLE")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			rec.Version, formatTime(rec.RecordedAt), rec.Entry.Status, rec.Digest, rec.Entry.Statute.Title)
	}
	return w.Flush()
}

func removeCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := db.Registry().Remove(c.String("id"))
	if err != nil {
		return err
	}
	if err := db.Save(c.Context); err != nil {
		return fmt.Errorf("failed to save database: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Removed %s at version %d\n", removed.ID(), removed.Version)
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := db.Registry()
	entries := reg.ListPaged(pagination(c))
	return printEntries(c.App.Writer, entries, reg.Count())
}

func searchCommand(c *cli.Context) error {
	var q core.SearchQuery
	if c.IsSet("tag") {
		q.Tag = new(string)
		*q.Tag = c.String("tag")
	}
	if c.IsSet("jurisdiction") {
		q.Jurisdiction = new(string)
		*q.Jurisdiction = c.String("jurisdiction")
	}
	if c.IsSet("status") {
		status, err := core.ParseStatus(c.String("status"))
		if err != nil {
			return err
		}
		q.Status = &status
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	page := db.Registry().SearchPaged(q, pagination(c))
	return printEntries(c.App.Writer, page.Entries, page.Total)
}

func fuzzyCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	matches := db.Registry().FuzzySearch(c.String("query"), c.Int("limit"))
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DISTANCE\tID\tTITLE")
	for _, m := range matches {
		fmt.Fprintf(w, "%d\t%s\t%s\n", m.Distance, m.Entry.ID(), m.Entry.Statute.Title)
	}
	return w.Flush()
}

func fullTextCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	matches := db.Registry().FullTextSearch(c.String("query"))
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tTITLE")
	for _, m := range matches {
		fmt.Fprintf(w, "%d\t%s\t%s\n", m.Score, m.Entry.ID(), m.Entry.Statute.Title)
	}
	return w.Flush()
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := db.Registry()
	snap := reg.Snapshot()
	versions := 0
	for _, chain := range snap.Chains {
		versions += len(chain.Records)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Statutes:  %s\n", humanize.Comma(int64(reg.Count())))
	fmt.Fprintf(out, "Removed:   %s\n", humanize.Comma(int64(snap.Len()-reg.Count())))
	fmt.Fprintf(out, "Versions:  %s\n", humanize.Comma(int64(versions)))
	for _, status := range core.Statuses {
		fmt.Fprintf(out, "  %-11s %s\n", status.String()+":", humanize.Comma(int64(len(reg.QueryByStatus(status)))))
	}
	return nil
}

func pagination(c *cli.Context) core.Pagination {
	return core.Pagination{Offset: c.Int("offset"), Limit: c.Int("limit")}
}

func printEntries(out io.Writer, entries []*core.StatuteEntry, total int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tSTATUS\tJURISDICTION\tTITLE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", e.ID(), e.Version, e.Status, e.Jurisdiction, e.Statute.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "(%d of %s)\n", len(entries), humanize.Comma(int64(total)))
	return err
}

func printEntry(out io.Writer, e *core.StatuteEntry) {
	fmt.Fprintf(out, "ID:            %s\n", e.ID())
	fmt.Fprintf(out, "Title:         %s\n", e.Statute.Title)
	fmt.Fprintf(out, "Jurisdiction:  %s\n", e.Jurisdiction)
	fmt.Fprintf(out, "Status:        %s\n", e.Status)
	fmt.Fprintf(out, "Tags:          %s\n", strings.Join(e.Tags, ", "))
	fmt.Fprintf(out, "Version:       %d\n", e.Version)
	fmt.Fprintf(out, "Created:       %s\n", formatTime(e.CreatedAt))
	fmt.Fprintf(out, "Modified:      %s\n", formatTime(e.ModifiedAt))
	fmt.Fprintf(out, "Effect:        [%s] %s\n", e.Statute.Effect.Kind, e.Statute.Effect.Description)
	for _, p := range e.Statute.Preconditions {
		fmt.Fprintf(out, "Precondition:  [%s] %s\n", p.Kind, p.Expression)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Format(time.RFC3339), humanize.Time(t))
}
