package main

import (
	"flag"
	"fmt"
	"os"

	persistlog "grassfinder.dev/internal/persistence/log"
	"grassfinder.dev/internal/query"
	"grassfinder.dev/internal/sim/scan"
)

func main() {
	var (
		resultsPath = flag.String("results", "", "path to results .jsonl.zst")
		queryPath   = flag.String("query", "", "query document the results were produced from")
	)
	flag.Parse()

	if *resultsPath == "" || *queryPath == "" {
		fmt.Fprintln(os.Stderr, "missing -results or -query")
		os.Exit(2)
	}

	q, err := query.Load(*queryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load query:", err)
		os.Exit(1)
	}
	h, recs, err := persistlog.ReadResults(*resultsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read results:", err)
		os.Exit(1)
	}

	fmt.Printf("results mode=%s digest=%s limit=%d records=%d started=%s\n", h.Mode, h.Digest, h.Limit, len(recs), h.StartedAt)

	if err := verify(q, h, recs); err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}
	fmt.Printf("verify ok: checked=%d\n", len(recs))
}

func verify(q query.Query, h persistlog.Header, recs []persistlog.Record) error {
	if d := q.Digest(); d != h.Digest {
		return fmt.Errorf("query digest %s does not match results digest %s", d, h.Digest)
	}
	c := q.Constraints()
	if err := c.Validate(); err != nil {
		return err
	}
	b := q.ScanBox()
	if err := b.Validate(); err != nil {
		return err
	}
	if uint64(len(recs)) > uint64(h.Limit) {
		return fmt.Errorf("%d records exceed limit %d", len(recs), h.Limit)
	}
	p := scan.ScoreParams{Tolerance: h.Tolerance, MaxScore: h.MaxScore}

	var prev *persistlog.Record
	for i := range recs {
		r := recs[i]
		if !inBox(b, r) {
			return fmt.Errorf("record %d (%d,%d,%d) outside box", i, r.X, r.Y, r.Z)
		}
		if prev != nil && !before(*prev, r) {
			return fmt.Errorf("record %d (%d,%d,%d) out of scan order", i, r.X, r.Y, r.Z)
		}
		switch h.Mode {
		case query.ModeScored:
			s, ok := c.ScoreAt(r.X, r.Y, r.Z, b.AnyY, p)
			if !ok {
				return fmt.Errorf("record %d (%d,%d,%d) exceeds max score", i, r.X, r.Y, r.Z)
			}
			if r.Score == nil || *r.Score != s {
				return fmt.Errorf("record %d (%d,%d,%d) score mismatch: recomputed %d", i, r.X, r.Y, r.Z, s)
			}
		default:
			if !c.MatchAt(r.X, r.Y, r.Z, b.AnyY) {
				return fmt.Errorf("record %d (%d,%d,%d) does not match", i, r.X, r.Y, r.Z)
			}
		}
		prev = &recs[i]
	}
	return nil
}

func inBox(b scan.Box, r persistlog.Record) bool {
	if r.X < b.X0 || r.X > b.X1 || r.Z < b.Z0 || r.Z > b.Z1 {
		return false
	}
	if b.AnyY {
		return r.Y == b.Y0
	}
	return r.Y >= b.Y0 && r.Y <= b.Y1
}

// before reports whether a precedes b in y, z, x order.
func before(a, b persistlog.Record) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.Z != b.Z {
		return a.Z < b.Z
	}
	return a.X < b.X
}
