// Command trending-import derives the trending product set from gzipped view
// logs and flags the result in the record store.
//
// The logs are large enough that exact per-day sets do not fit in memory, so
// the import runs in two passes: pass 1 builds a bloom filter per daily log,
// pass 2 re-streams each log and keeps products whose ID tests positive in at
// least two other days' filters. Survivors are ranked by total view count and
// the top K are marked trending.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/freshcart/storefront/internal/recordstore"
)

const (
	bloomCapacity = 50_000_000
	bloomFPR      = 0.001
	progressEvery = 5_000_000
	minDays       = 2
)

// fileResult holds view counts for candidate products found in one log.
type fileResult struct {
	counts map[string]uint64
	days   map[string]uint
}

func main() {
	var (
		dataDir string
		numDays int
		topK    int
		baseURL string
		project string
		apiKey  string
		dryRun  bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing viewlogN.gz files")
	flag.IntVar(&numDays, "days", 3, "number of daily view logs")
	flag.IntVar(&topK, "top", 8, "number of products to mark trending")
	flag.StringVar(&baseURL, "record-store-url", "", "record store base URL (or FRESHCART_RECORD_STORE_BASE_URL env)")
	flag.StringVar(&project, "record-store-project", "", "record store project ID (or FRESHCART_RECORD_STORE_PROJECT_ID env)")
	flag.StringVar(&apiKey, "record-store-key", "", "record store API key (or FRESHCART_RECORD_STORE_API_KEY env)")
	flag.BoolVar(&dryRun, "dry-run", false, "print the trending set without writing")
	flag.Parse()

	if baseURL == "" {
		baseURL = os.Getenv("FRESHCART_RECORD_STORE_BASE_URL")
	}
	if project == "" {
		project = os.Getenv("FRESHCART_RECORD_STORE_PROJECT_ID")
	}
	if apiKey == "" {
		apiKey = os.Getenv("FRESHCART_RECORD_STORE_API_KEY")
	}
	if !dryRun && baseURL == "" {
		slog.Error("record store URL is required: set --record-store-url or FRESHCART_RECORD_STORE_BASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, numDays, topK, baseURL, project, apiKey, dryRun); err != nil {
		slog.Error("trending import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("trending import completed successfully")
}

func run(ctx context.Context, dataDir string, numDays, topK int, baseURL, project, apiKey string, dryRun bool) error {
	files := make([]string, numDays)
	for i := range numDays {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("viewlog%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: build one bloom filter per daily log, concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("days", numDays))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: count views for products seen across enough days.
	slog.Info("pass 2: counting cross-day candidates")

	ranked, err := rankCandidates(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "rank candidates")
	}

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	slog.Info("trending set computed", slog.Int("products", len(ranked)))

	if dryRun {
		for _, c := range ranked {
			slog.Info("trending", slog.String("product_id", c.id), slog.Uint64("views", c.views))
		}
		return nil
	}

	client := recordstore.NewClient(recordstore.Config{
		BaseURL:   baseURL,
		ProjectID: project,
		APIKey:    apiKey,
	})
	return writeTrending(ctx, client, ranked)
}

// buildBloomFilters creates one bloom filter per log file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(id string) {
			filter.AddString(id)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress", slog.Int("day", idx+1), slog.Uint64("views", count))
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for day %d", idx+1)
		}

		slog.Info("pass 1 complete", slog.Int("day", idx+1), slog.Uint64("total_views", count))
		filters[idx] = filter
		return nil
	}
}

type candidate struct {
	id    string
	views uint64
}

// rankCandidates re-streams each log, keeps products whose ID appears in at
// least minDays days (bloom pre-filter plus a day bitmask), and ranks them
// by total views descending.
func rankCandidates(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]candidate, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(countCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := make(map[string]uint64)
	dayMasks := make(map[string]uint)
	for _, r := range results {
		for id, views := range r.counts {
			totals[id] += views
		}
		for id, mask := range r.days {
			dayMasks[id] |= mask
		}
	}

	ranked := make([]candidate, 0, len(totals))
	for id, views := range totals {
		if bits.OnesCount(dayMasks[id]) >= minDays {
			ranked = append(ranked, candidate{id: id, views: views})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].views != ranked[j].views {
			return ranked[i].views > ranked[j].views
		}
		return ranked[i].id < ranked[j].id
	})
	return ranked, nil
}

func countCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		counts := make(map[string]uint64)
		days := make(map[string]uint)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(id string) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress", slog.Int("day", idx+1), slog.Uint64("views", count))
			}

			// Only track products that other days might also have seen.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(id) {
					counts[id]++
					days[id] |= fileBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan day %d", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("day", idx+1),
			slog.Uint64("total_views", count),
			slog.Int("candidates", len(counts)),
		)

		results[idx] = fileResult{counts: counts, days: days}
		return nil
	}
}

// streamGzFile opens a gzip-compressed log and calls fn with the product ID
// of each view line. Lines are "productID" or "timestamp<TAB>productID".
func streamGzFile(ctx context.Context, path string, fn func(id string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if i := strings.LastIndexByte(line, '\t'); i >= 0 {
			line = line[i+1:]
		}
		if line != "" {
			fn(line)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// writeTrending clears the trending flag on products that dropped out and
// sets it on the new set.
func writeTrending(ctx context.Context, client *recordstore.Client, ranked []candidate) error {
	current, err := client.FetchRecords(ctx, "product", recordstore.Query{
		Fields: []string{"Id"},
		Where: []recordstore.Condition{
			{Field: "trending", Operator: recordstore.OpEqualTo, Values: []string{"true"}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "fetch current trending set")
	}

	next := make(map[string]bool, len(ranked))
	for _, c := range ranked {
		next[c.id] = true
	}

	for _, rec := range current {
		id := rec.String("Id")
		if next[id] {
			continue
		}
		if _, err := client.UpdateRecord(ctx, "product", id, map[string]any{"trending": false}); err != nil {
			return errors.Wrapf(err, "clear trending on %s", id)
		}
	}

	for i, c := range ranked {
		if _, err := client.UpdateRecord(ctx, "product", c.id, map[string]any{"trending": true}); err != nil {
			return errors.Wrapf(err, "mark %s trending", c.id)
		}
		slog.Info("marked trending",
			slog.Int("rank", i+1),
			slog.String("product_id", c.id),
			slog.Uint64("views", c.views),
		)
	}
	return nil
}
