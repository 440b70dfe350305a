package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"grassfinder.dev/internal/sim/scan"
)

const (
	KindHeader = "header"
	KindMatch  = "match"
)

// Header is the first line of a results log.
type Header struct {
	Kind      string   `json:"kind"`
	Digest    string   `json:"digest"`
	Name      string   `json:"name,omitempty"`
	Mode      string   `json:"mode"`
	AnyY      bool     `json:"any_y"`
	Box       [6]int32 `json:"box"`
	Limit     uint32   `json:"limit"`
	Tolerance int32    `json:"tolerance"`
	MaxScore  int32    `json:"max_score"`
	StartedAt string   `json:"started_at"`
}

// Record is one accepted candidate. Score is set for scored scans only.
type Record struct {
	Kind  string `json:"kind"`
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Z     int32  `json:"z"`
	Score *int32 `json:"score,omitempty"`
}

// ResultLogger writes a header followed by one record per match.
type ResultLogger struct{ w *JSONLZstdWriter }

func NewResultLogger(path string) *ResultLogger {
	return &ResultLogger{w: NewJSONLZstdWriter(path)}
}

func (l *ResultLogger) Path() string { return l.w.Path() }

func (l *ResultLogger) WriteHeader(h Header) error {
	h.Kind = KindHeader
	return l.w.Write(h)
}

func (l *ResultLogger) WriteStrict(ms []scan.Match) error {
	for _, m := range ms {
		if err := l.w.Write(Record{Kind: KindMatch, X: m.X, Y: m.Y, Z: m.Z}); err != nil {
			return err
		}
	}
	return nil
}

func (l *ResultLogger) WriteScored(ms []scan.ScoredMatch) error {
	for _, m := range ms {
		s := m.Score
		if err := l.w.Write(Record{Kind: KindMatch, X: m.X, Y: m.Y, Z: m.Z, Score: &s}); err != nil {
			return err
		}
	}
	return nil
}

func (l *ResultLogger) Close() error { return l.w.Close() }

// ReadResults decodes a log written by ResultLogger.
func ReadResults(path string) (Header, []Record, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var recs []Record
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if line == 1 {
			if err := json.Unmarshal(raw, &h); err != nil {
				return h, nil, fmt.Errorf("%s:%d: unmarshal: %w", filepath.Base(path), line, err)
			}
			if h.Kind != KindHeader {
				return h, nil, fmt.Errorf("%s:%d: expected header, got %q", filepath.Base(path), line, h.Kind)
			}
			continue
		}
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return h, nil, fmt.Errorf("%s:%d: unmarshal: %w", filepath.Base(path), line, err)
		}
		if r.Kind != KindMatch {
			return h, nil, fmt.Errorf("%s:%d: unexpected kind %q", filepath.Base(path), line, r.Kind)
		}
		recs = append(recs, r)
	}
	if err := sc.Err(); err != nil {
		return h, nil, err
	}
	if line == 0 {
		return h, nil, fmt.Errorf("%s: empty results log", filepath.Base(path))
	}
	return h, recs, nil
}
