package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	persistlog "grassfinder.dev/internal/persistence/log"
	"grassfinder.dev/internal/query"
	"grassfinder.dev/internal/sim/scan"
	"grassfinder.dev/internal/sim/tuning"
)

func main() {
	var (
		queryPath  = flag.String("query", "", "path to query document (.yaml or .json)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (defaults used if missing)")
		outPath    = flag.String("out", "", "results log path (.jsonl.zst); empty writes <output_dir>/<digest>.jsonl.zst")
		noLog      = flag.Bool("no_log", false, "do not write a results log")
		workers    = flag.Int("workers", 0, "parallel workers (0: tuning value)")
		maxMatches = flag.Int64("max_matches", -1, "match cap (-1: query or tuning value)")
		timeout    = flag.Duration("timeout", 0, "abort the scan after this long (0: no limit)")
		flat       = flag.Bool("flat", false, "print results as one flattened int32 list")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[finder] ", log.LstdFlags|log.Lmicroseconds)

	if strings.TrimSpace(*queryPath) == "" {
		fmt.Fprintln(os.Stderr, "missing -query")
		os.Exit(2)
	}

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if *workers > 0 {
		tune.Workers = *workers
	}

	q, err := query.Load(*queryPath)
	if err != nil {
		logger.Fatalf("load query: %v", err)
	}
	if *maxMatches >= 0 {
		if *maxMatches > int64(^uint32(0)) {
			logger.Fatalf("-max_matches out of range: %d", *maxMatches)
		}
		m := uint32(*maxMatches)
		q.MaxMatches = &m
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	box := q.ScanBox()
	digest := q.Digest()
	logger.Printf("scan %s mode=%s digest=%s entries=%d candidates=%d workers=%d",
		q.Name, q.Mode, digest[:12], q.Constraints().Len(), box.Volume(), tune.Workers)

	started := time.Now()
	res, err := query.Run(ctx, q, tune)
	if err != nil {
		logger.Fatalf("scan: %v", err)
	}
	logger.Printf("scan done: matches=%d limit=%d elapsed=%s", res.Len(), res.Limit, time.Since(started).Round(time.Millisecond))

	if !*noLog {
		path := strings.TrimSpace(*outPath)
		if path == "" {
			path = filepath.Join(tune.OutputDir, digest+".jsonl.zst")
		}
		if err := writeResults(path, q, digest, res, started); err != nil {
			logger.Fatalf("write results: %v", err)
		}
		logger.Printf("results written to %s", path)
	}

	printResults(res, *flat)
}

func writeResults(path string, q query.Query, digest string, res query.Result, started time.Time) error {
	rl := persistlog.NewResultLogger(path)
	b := q.ScanBox()
	h := persistlog.Header{
		Digest:    digest,
		Name:      q.Name,
		Mode:      res.Mode,
		AnyY:      b.AnyY,
		Box:       [6]int32{b.X0, b.X1, b.Y0, b.Y1, b.Z0, b.Z1},
		Limit:     res.Limit,
		Tolerance: res.Params.Tolerance,
		MaxScore:  res.Params.MaxScore,
		StartedAt: started.UTC().Format(time.RFC3339),
	}
	if err := rl.WriteHeader(h); err != nil {
		_ = rl.Close()
		return err
	}
	var err error
	if res.Mode == query.ModeScored {
		err = rl.WriteScored(res.Scored)
	} else {
		err = rl.WriteStrict(res.Strict)
	}
	if err != nil {
		_ = rl.Close()
		return err
	}
	return rl.Close()
}

func printResults(res query.Result, flat bool) {
	if flat {
		var vals []int32
		if res.Mode == query.ModeScored {
			vals = scan.FlattenScored(res.Scored)
		} else {
			vals = scan.FlattenMatches(res.Strict)
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = fmt.Sprint(v)
		}
		fmt.Println(strings.Join(parts, ","))
		return
	}
	if res.Mode == query.ModeScored {
		for _, m := range res.Scored {
			fmt.Printf("%d %d %d score=%d\n", m.X, m.Y, m.Z, m.Score)
		}
		return
	}
	for _, m := range res.Strict {
		fmt.Printf("%d %d %d\n", m.X, m.Y, m.Z)
	}
}
