package evidence

import (
	"encoding/json"
	"fmt"
	"math"
)

// Cause is one of the three primary root causes. The declaration order is
// also the tie-break priority used by Argmax.
type Cause int

const (
	Product Cause = iota
	Automation
	Infrastructure
)

// Causes lists every primary cause in priority order.
var Causes = [3]Cause{Product, Automation, Infrastructure}

func (c Cause) String() string {
	switch c {
	case Product:
		return "product"
	case Automation:
		return "automation"
	case Infrastructure:
		return "infrastructure"
	}
	return fmt.Sprintf("cause(%d)", int(c))
}

func (c Cause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cause) UnmarshalText(b []byte) error {
	for _, k := range Causes {
		if k.String() == string(b) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown cause %q", string(b))
}

// Category maps the cause onto the output category of the same name.
func (c Cause) Category() Category {
	return Category(c.String())
}

// Tolerance is the allowed drift of a ScoreTriple sum from 1.0.
const Tolerance = 1e-9

// ScoreTriple splits belief across the primary causes, indexed by Cause.
type ScoreTriple [3]float64

// Triple builds a ScoreTriple from product, automation, infrastructure.
func Triple(product, automation, infrastructure float64) ScoreTriple {
	return ScoreTriple{product, automation, infrastructure}
}

// Sum returns the total of all three components.
func (s ScoreTriple) Sum() float64 {
	return s[Product] + s[Automation] + s[Infrastructure]
}

// Normalize rescales s to sum to 1.0. A zero or invalid triple becomes even thirds.
func (s ScoreTriple) Normalize() ScoreTriple {
	total := s.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return ScoreTriple{1.0 / 3, 1.0 / 3, 1.0 / 3}
	}
	return ScoreTriple{s[0] / total, s[1] / total, s[2] / total}
}

// IsNormalized reports whether every component is in [0,1] and the sum is 1.0.
func (s ScoreTriple) IsNormalized() bool {
	for _, v := range s {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return false
		}
	}
	return math.Abs(s.Sum()-1.0) <= Tolerance
}

// Argmax returns the highest-scoring cause; ties go to the earlier cause in
// Causes order (product, then automation, then infrastructure).
func (s ScoreTriple) Argmax() Cause {
	best := Product
	for _, c := range Causes[1:] {
		if s[c] > s[best] {
			best = c
		}
	}
	return best
}

// Ranked returns the causes ordered by score, highest first, ties by priority.
func (s ScoreTriple) Ranked() [3]Cause {
	out := Causes
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && s[out[j]] > s[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Separation is the gap between the top two scores relative to the top score.
func (s ScoreTriple) Separation() float64 {
	r := s.Ranked()
	top, second := s[r[0]], s[r[1]]
	if top <= 0 {
		return 0
	}
	return (top - second) / top
}

type scoreJSON struct {
	Product        float64 `json:"product"`
	Automation     float64 `json:"automation"`
	Infrastructure float64 `json:"infrastructure"`
}

func (s ScoreTriple) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoreJSON{s[Product], s[Automation], s[Infrastructure]})
}

func (s *ScoreTriple) UnmarshalJSON(data []byte) error {
	var v scoreJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = ScoreTriple{v.Product, v.Automation, v.Infrastructure}
	return nil
}

func (s ScoreTriple) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", s[Product], s[Automation], s[Infrastructure])
}
