// Command bench drives concurrent find_ancestor reads
// against a shared graph, measuring read throughput once the graph is
// built. Reads are safe to run concurrently with each other (spec §5);
// this tool exists to exercise that claim under load, the way the
// teacher's multi-query searcher fans sub-queries out with errgroup.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mankinskin/hypergraph/internal/hglog"
	"github.com/mankinskin/hypergraph/pkg/hypergraph"
	"github.com/mankinskin/hypergraph/pkg/version"
)

func main() {
	corpus := flag.String("corpus", defaultCorpus, "text inserted word-by-word to seed the graph")
	queries := flag.Int("queries", 20000, "number of find_ancestor calls to issue")
	parallelism := flag.Int("parallelism", 8, "maximum concurrent readers")
	verbose := flag.Bool("verbose", false, "enable engine debug logging")
	showVersion := flag.Bool("version", false, "print version information and exit")
	shortVersion := flag.Bool("short", false, "with -version, print only the version number")
	jsonVersion := flag.Bool("json", false, "with -version, print version information as JSON")
	flag.Parse()

	if *showVersion {
		switch {
		case *shortVersion:
			fmt.Println(version.Short())
		case *jsonVersion:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(version.GetInfo()); err != nil {
				fmt.Fprintln(os.Stderr, "bench:", err)
				os.Exit(1)
			}
		default:
			fmt.Println(version.String())
		}
		return
	}

	if *verbose {
		hglog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(*corpus, *queries, *parallelism); err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}

const defaultCorpus = "the quick brown fox jumps over the lazy dog the quick brown fox runs away"

func run(corpus string, queryCount, parallelism int) error {
	g := hypergraph.CreateGraph[rune]()

	words := strings.Fields(corpus)
	if len(words) == 0 {
		return fmt.Errorf("empty corpus")
	}
	for _, w := range words {
		if _, err := g.Insert([]rune(w)); err != nil {
			return fmt.Errorf("seed insert %q: %w", w, err)
		}
	}

	queryAtoms := make([][]rune, len(words))
	for i, w := range words {
		queryAtoms[i] = []rune(w)
	}

	rng := rand.New(rand.NewSource(1))
	start := time.Now()
	var hits, misses int64

	g2, ctx := errgroup.WithContext(context.Background())
	sem := make(chan struct{}, parallelism)

	for i := 0; i < queryCount; i++ {
		q := queryAtoms[rng.Intn(len(queryAtoms))]
		g2.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}
			if _, err := g.FindAncestor(q); err != nil {
				atomic.AddInt64(&misses, 1)
				return nil
			}
			atomic.AddInt64(&hits, 1)
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	stats := g.Stats()
	fmt.Printf("vertices=%d atoms=%d patterns=%d\n", stats.Vertices, stats.Atoms, stats.Patterns)
	fmt.Printf("queries=%d hits=%d misses=%d elapsed=%s qps=%.0f\n",
		queryCount, hits, misses, elapsed, float64(queryCount)/elapsed.Seconds())
	return nil
}
