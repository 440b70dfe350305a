// Package query loads scan requests from YAML or JSON documents.
package query

import (
	"bytes"
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"grassfinder.dev/internal/sim/scan"
	"grassfinder.dev/internal/sim/tuning"
)

const (
	ModeStrict = "strict"
	ModeScored = "scored"
)

//go:embed query.schema.json
var schemaSrc string

var schema = jsonschema.MustCompileString("https://grassfinder.dev/schemas/query.schema.json", schemaSrc)

type Query struct {
	Name       string   `yaml:"name,omitempty" json:"name,omitempty"`
	Mode       string   `yaml:"mode" json:"mode"`
	AnyY       bool     `yaml:"any_y" json:"any_y"`
	MaxMatches *uint32  `yaml:"max_matches,omitempty" json:"max_matches,omitempty"`
	Tolerance  *int32   `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	MaxScore   *int32   `yaml:"max_score,omitempty" json:"max_score,omitempty"`
	Box        BoxSpec  `yaml:"box" json:"box"`
	Entries    []Entry  `yaml:"entries,omitempty" json:"entries,omitempty"`
	Columns    *Columns `yaml:"columns,omitempty" json:"columns,omitempty"`
}

type BoxSpec struct {
	X []int32 `yaml:"x" json:"x"`
	Y []int32 `yaml:"y" json:"y"`
	Z []int32 `yaml:"z" json:"z"`
}

type Entry struct {
	Offset []int32 `yaml:"offset" json:"offset"`
	Packed uint16  `yaml:"packed" json:"packed"`
	Mask   uint16  `yaml:"mask" json:"mask"`
	Drip   bool    `yaml:"drip,omitempty" json:"drip,omitempty"`
}

// Columns is the parallel-sequence form. Lengths are checked by the scanner.
type Columns struct {
	DX     []int32  `yaml:"dx" json:"dx"`
	DY     []int32  `yaml:"dy" json:"dy"`
	DZ     []int32  `yaml:"dz" json:"dz"`
	Packed []uint16 `yaml:"packed" json:"packed"`
	Mask   []uint16 `yaml:"mask" json:"mask"`
	Drip   []bool   `yaml:"drip" json:"drip"`
}

func Load(path string) (Query, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Query{}, err
	}
	q, err := Parse(raw)
	if err != nil {
		return q, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Parse validates raw (YAML or JSON) against the query schema and decodes it.
func Parse(raw []byte) (Query, error) {
	var q Query
	doc, err := toJSONValue(raw)
	if err != nil {
		return q, err
	}
	if err := schema.Validate(doc); err != nil {
		return q, fmt.Errorf("schema: %w", err)
	}
	if err := yaml.Unmarshal(raw, &q); err != nil {
		return q, fmt.Errorf("decode: %w", err)
	}
	q.Normalize()
	return q, nil
}

// toJSONValue decodes YAML into the value shape the schema validator expects.
func toJSONValue(raw []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

func (q *Query) Normalize() {
	if q == nil {
		return
	}
	q.Mode = strings.ToLower(strings.TrimSpace(q.Mode))
	if q.Mode == "" {
		q.Mode = ModeStrict
	}
}

// Constraints returns the entries as parallel sequences.
func (q Query) Constraints() scan.Constraints {
	if q.Columns != nil {
		return scan.Constraints{
			DX:     q.Columns.DX,
			DY:     q.Columns.DY,
			DZ:     q.Columns.DZ,
			Packed: q.Columns.Packed,
			Mask:   q.Columns.Mask,
			Drip:   q.Columns.Drip,
		}
	}
	entries := make([]scan.Entry, 0, len(q.Entries))
	for _, e := range q.Entries {
		se := scan.Entry{Packed: e.Packed, Mask: e.Mask, Drip: e.Drip}
		if len(e.Offset) == 3 {
			se.DX, se.DY, se.DZ = e.Offset[0], e.Offset[1], e.Offset[2]
		}
		entries = append(entries, se)
	}
	return scan.FromEntries(entries)
}

func (q Query) ScanBox() scan.Box {
	b := scan.Box{AnyY: q.AnyY}
	if len(q.Box.X) == 2 {
		b.X0, b.X1 = q.Box.X[0], q.Box.X[1]
	}
	if len(q.Box.Y) == 2 {
		b.Y0, b.Y1 = q.Box.Y[0], q.Box.Y[1]
	}
	if len(q.Box.Z) == 2 {
		b.Z0, b.Z1 = q.Box.Z[0], q.Box.Z[1]
	}
	return b
}

// Limits resolves the match cap and score bounds, falling back to t.
func (q Query) Limits(t tuning.Tuning) (uint32, scan.ScoreParams) {
	maxMatches := t.MaxMatches
	if q.MaxMatches != nil {
		maxMatches = *q.MaxMatches
	}
	p := scan.ScoreParams{Tolerance: t.Scoring.Tolerance, MaxScore: t.Scoring.MaxScore}
	if q.Tolerance != nil {
		p.Tolerance = *q.Tolerance
	}
	if q.MaxScore != nil {
		p.MaxScore = *q.MaxScore
	}
	return maxMatches, p
}

// Digest identifies the search a query describes. Row and column forms of the
// same constraints share a digest; name and limits do not contribute.
func (q Query) Digest() string {
	c := q.Constraints()
	b := q.ScanBox()
	h := sha256.New()
	fmt.Fprintf(h, "mode=%s any_y=%t box=%d,%d,%d,%d,%d,%d\n", q.Mode, b.AnyY, b.X0, b.X1, b.Y0, b.Y1, b.Z0, b.Z1)
	fmt.Fprintf(h, "dx=%v\ndy=%v\ndz=%v\npacked=%v\nmask=%v\ndrip=%v\n", c.DX, c.DY, c.DZ, c.Packed, c.Mask, c.Drip)
	return hex.EncodeToString(h.Sum(nil))
}

// Result holds the output of whichever scan the query's mode selects.
type Result struct {
	Mode    string
	Strict  []scan.Match
	Scored  []scan.ScoredMatch
	Limit   uint32
	Params  scan.ScoreParams
	Workers int
}

func (r Result) Len() int {
	if r.Mode == ModeScored {
		return len(r.Scored)
	}
	return len(r.Strict)
}

// Run executes the query with t supplying defaults.
func Run(ctx context.Context, q Query, t tuning.Tuning) (Result, error) {
	maxMatches, p := q.Limits(t)
	res := Result{Mode: q.Mode, Limit: maxMatches, Params: p, Workers: t.Workers}
	c := q.Constraints()
	b := q.ScanBox()

	var err error
	switch q.Mode {
	case ModeStrict:
		res.Strict, err = scan.StrictSharded(ctx, c, b, maxMatches, t.Workers)
	case ModeScored:
		res.Scored, err = scan.ScoredSharded(ctx, c, b, maxMatches, p, t.Workers)
	default:
		return res, fmt.Errorf("unknown mode %q", q.Mode)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
