package evidence

import (
	"encoding/json"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestArgmax_TieBreakPriority(t *testing.T) {
	cases := []struct {
		name string
		s    ScoreTriple
		want Cause
	}{
		{"clear automation", Triple(0.3, 0.6, 0.1), Automation},
		{"product beats automation on tie", Triple(0.4, 0.4, 0.2), Product},
		{"automation beats infrastructure on tie", Triple(0.2, 0.4, 0.4), Automation},
		{"three-way tie goes to product", Triple(1.0/3, 1.0/3, 1.0/3), Product},
		{"infrastructure wins outright", Triple(0.1, 0.1, 0.8), Infrastructure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.s.Argmax(); got != tc.want {
				t.Errorf("Argmax(%s): got %s want %s", tc.s, got, tc.want)
			}
		})
	}
}

func TestRanked_StableByPriority(t *testing.T) {
	got := Triple(0.2, 0.4, 0.4).Ranked()
	want := [3]Cause{Automation, Infrastructure, Product}
	if got != want {
		t.Errorf("Ranked: got %v want %v", got, want)
	}
}

func TestSeparation(t *testing.T) {
	if got := Triple(0.3, 0.6, 0.1).Separation(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Separation: got %v want 0.5", got)
	}
	if got := Triple(0.5, 0.5, 0).Separation(); got != 0 {
		t.Errorf("Separation on tie: got %v want 0", got)
	}
	if got := (ScoreTriple{}).Separation(); got != 0 {
		t.Errorf("Separation on zero triple: got %v want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	got := Triple(0.45, 0.6, 0.1).Normalize()
	if !got.IsNormalized() {
		t.Fatalf("Normalize: %s sums to %v", got, got.Sum())
	}
	if got.Argmax() != Automation {
		t.Errorf("Normalize changed the winner: %s", got)
	}
	zero := (ScoreTriple{}).Normalize()
	if !zero.IsNormalized() || zero[Product] != zero[Infrastructure] {
		t.Errorf("zero triple should normalize to thirds, got %s", zero)
	}
}

func TestIsNormalized_RejectsOutOfRange(t *testing.T) {
	if Triple(1.2, -0.2, 0).IsNormalized() {
		t.Error("negative component accepted")
	}
	if Triple(0.5, 0.5, 0.1).IsNormalized() {
		t.Error("sum 1.1 accepted")
	}
}

func TestScoreTriple_JSONShape(t *testing.T) {
	data, err := json.Marshal(Triple(0.3, 0.6, 0.1))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"product":0.3,"automation":0.6,"infrastructure":0.1}`
	if string(data) != want {
		t.Errorf("got %s want %s", data, want)
	}
}

func TestLocatorState_Encodings(t *testing.T) {
	var repo RepositoryEvidence
	if err := json.Unmarshal([]byte(`{"locator_found":null,"recently_changed":true}`), &repo); err != nil {
		t.Fatalf("json: %v", err)
	}
	if repo.LocatorFound != LocatorUnknown {
		t.Errorf("json null: got %s want unknown", repo.LocatorFound)
	}
	if err := json.Unmarshal([]byte(`{"locator_found":false}`), &repo); err != nil {
		t.Fatalf("json: %v", err)
	}
	if repo.LocatorFound != LocatorNotFound {
		t.Errorf("json false: got %s want not_found", repo.LocatorFound)
	}

	var fromYAML RepositoryEvidence
	if err := yaml.Unmarshal([]byte("locator_found: true\ndays_since_change: 3\n"), &fromYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if fromYAML.LocatorFound != LocatorFound {
		t.Errorf("yaml true: got %s want found", fromYAML.LocatorFound)
	}
	if fromYAML.DaysSinceChange == nil || *fromYAML.DaysSinceChange != 3 {
		t.Errorf("yaml days_since_change: got %v want 3", fromYAML.DaysSinceChange)
	}
	if err := yaml.Unmarshal([]byte("locator_found: not_found\n"), &fromYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if fromYAML.LocatorFound != LocatorNotFound {
		t.Errorf("yaml not_found: got %s want not_found", fromYAML.LocatorFound)
	}
}

func TestParseKind(t *testing.T) {
	for i := 0; i < NumKinds; i++ {
		k := SignatureKind(i)
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q): got %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("segfault"); err == nil {
		t.Error("ParseKind accepted an unknown name")
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[float64]Level{0.9: LevelHigh, 0.75: LevelHigh, 0.6: LevelMedium, 0.3: LevelLow, 0.1: LevelVeryLow}
	for v, want := range cases {
		if got := LevelFor(v); got != want {
			t.Errorf("LevelFor(%v): got %s want %s", v, got, want)
		}
	}
}
