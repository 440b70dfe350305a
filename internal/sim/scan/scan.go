// Package scan finds candidate origins in a box whose neighbourhood signatures
// satisfy a set of constraint entries.
package scan

import "context"

type Match struct {
	X, Y, Z int32
}

type ScoredMatch struct {
	X, Y, Z int32
	Score   int32
}

func validate(c Constraints, b Box) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return b.Validate()
}

// Strict returns, in scan order, the first maxMatches candidates that satisfy
// every entry of c.
func Strict(ctx context.Context, c Constraints, b Box, maxMatches uint32) ([]Match, error) {
	if err := validate(c, b); err != nil {
		return nil, err
	}
	out := make([]Match, 0, capHint(maxMatches, b))
	if maxMatches == 0 {
		return out, nil
	}
	err := b.walk(ctx, func(x, y, z int32) bool {
		if !c.MatchAt(x, y, z, b.AnyY) {
			return true
		}
		out = append(out, Match{X: x, Y: y, Z: z})
		return uint32(len(out)) < maxMatches
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Scored returns, in scan order, the first maxMatches candidates whose score
// stays within p.MaxScore.
func Scored(ctx context.Context, c Constraints, b Box, maxMatches uint32, p ScoreParams) ([]ScoredMatch, error) {
	if err := validate(c, b); err != nil {
		return nil, err
	}
	out := make([]ScoredMatch, 0, capHint(maxMatches, b))
	if maxMatches == 0 {
		return out, nil
	}
	err := b.walk(ctx, func(x, y, z int32) bool {
		s, ok := c.ScoreAt(x, y, z, b.AnyY, p)
		if !ok {
			return true
		}
		out = append(out, ScoredMatch{X: x, Y: y, Z: z, Score: s})
		return uint32(len(out)) < maxMatches
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StrictFlat is Strict with the result flattened to x,y,z triples.
func StrictFlat(ctx context.Context, c Constraints, b Box, maxMatches uint32) ([]int32, error) {
	ms, err := Strict(ctx, c, b, maxMatches)
	if err != nil {
		return nil, err
	}
	return FlattenMatches(ms), nil
}

// ScoredFlat is Scored with the result flattened to x,y,z,score quadruples.
func ScoredFlat(ctx context.Context, c Constraints, b Box, maxMatches uint32, p ScoreParams) ([]int32, error) {
	ms, err := Scored(ctx, c, b, maxMatches, p)
	if err != nil {
		return nil, err
	}
	return FlattenScored(ms), nil
}

func FlattenMatches(ms []Match) []int32 {
	out := make([]int32, 0, len(ms)*3)
	for _, m := range ms {
		out = append(out, m.X, m.Y, m.Z)
	}
	return out
}

func FlattenScored(ms []ScoredMatch) []int32 {
	out := make([]int32, 0, len(ms)*4)
	for _, m := range ms {
		out = append(out, m.X, m.Y, m.Z, m.Score)
	}
	return out
}
