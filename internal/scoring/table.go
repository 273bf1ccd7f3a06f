// Package scoring holds the decision table, the factor adjuster and the
// confidence calculator.
package scoring

import (
	"fmt"

	"triage/internal/evidence"
)

const (
	envHealthy = iota
	envUnhealthy
)

type kindRows [2][evidence.NumLocatorStates]evidence.ScoreTriple

var row = evidence.Triple

// Rows are indexed [environment][locator state]; the unknown locator column is
// the wildcard row used when the source search gave no answer.
var defaultRows = map[evidence.SignatureKind]kindRows{
	evidence.KindTimeout: {
		envHealthy: {
			evidence.LocatorFound:    row(0.20, 0.70, 0.10),
			evidence.LocatorNotFound: row(0.40, 0.50, 0.10),
			evidence.LocatorUnknown:  row(0.30, 0.60, 0.10),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.10, 0.20, 0.70),
			evidence.LocatorNotFound: row(0.20, 0.20, 0.60),
			evidence.LocatorUnknown:  row(0.15, 0.20, 0.65),
		},
	},
	evidence.KindLocatorNotFound: {
		envHealthy: {
			evidence.LocatorFound:    row(0.30, 0.60, 0.10),
			evidence.LocatorNotFound: row(0.60, 0.30, 0.10),
			evidence.LocatorUnknown:  row(0.45, 0.45, 0.10),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.20, 0.30, 0.50),
			evidence.LocatorNotFound: row(0.30, 0.30, 0.40),
			evidence.LocatorUnknown:  row(0.25, 0.30, 0.45),
		},
	},
	evidence.KindNetwork: {
		envHealthy: {
			evidence.LocatorFound:    row(0.60, 0.10, 0.30),
			evidence.LocatorNotFound: row(0.50, 0.20, 0.30),
			evidence.LocatorUnknown:  row(0.55, 0.15, 0.30),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.10, 0.10, 0.80),
			evidence.LocatorNotFound: row(0.10, 0.10, 0.80),
			evidence.LocatorUnknown:  row(0.10, 0.10, 0.80),
		},
	},
	evidence.KindAssertion: {
		envHealthy: {
			evidence.LocatorFound:    row(0.70, 0.20, 0.10),
			evidence.LocatorNotFound: row(0.60, 0.30, 0.10),
			evidence.LocatorUnknown:  row(0.65, 0.25, 0.10),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.30, 0.20, 0.50),
			evidence.LocatorNotFound: row(0.40, 0.20, 0.40),
			evidence.LocatorUnknown:  row(0.35, 0.20, 0.45),
		},
	},
	evidence.KindServerError: {
		envHealthy: {
			evidence.LocatorFound:    row(0.90, 0.05, 0.05),
			evidence.LocatorNotFound: row(0.90, 0.05, 0.05),
			evidence.LocatorUnknown:  row(0.90, 0.05, 0.05),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.60, 0.10, 0.30),
			evidence.LocatorNotFound: row(0.50, 0.10, 0.40),
			evidence.LocatorUnknown:  row(0.55, 0.10, 0.35),
		},
	},
	evidence.KindAuthError: {
		envHealthy: {
			evidence.LocatorFound:    row(0.30, 0.60, 0.10),
			evidence.LocatorNotFound: row(0.40, 0.50, 0.10),
			evidence.LocatorUnknown:  row(0.35, 0.55, 0.10),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.20, 0.30, 0.50),
			evidence.LocatorNotFound: row(0.20, 0.30, 0.50),
			evidence.LocatorUnknown:  row(0.20, 0.30, 0.50),
		},
	},
	evidence.KindNotFound: {
		envHealthy: {
			evidence.LocatorFound:    row(0.70, 0.20, 0.10),
			evidence.LocatorNotFound: row(0.60, 0.30, 0.10),
			evidence.LocatorUnknown:  row(0.65, 0.25, 0.10),
		},
		envUnhealthy: {
			evidence.LocatorFound:    row(0.30, 0.20, 0.50),
			evidence.LocatorNotFound: row(0.30, 0.20, 0.50),
			evidence.LocatorUnknown:  row(0.30, 0.20, 0.50),
		},
	},
}

// NeutralRow is the default row for unknown signatures.
var NeutralRow = evidence.Triple(1.0/3, 1.0/3, 1.0/3)

// Table is the decision table. Build one with NewTable or DefaultTable.
type Table struct {
	rows [evidence.NumKinds]kindRows
}

// DefaultTable returns the table with the even-thirds neutral row.
func DefaultTable() *Table {
	tbl, err := NewTable(NeutralRow)
	if err != nil {
		panic(err)
	}
	return tbl
}

// NewTable returns the decision table using neutral for unknown signatures.
// neutral must already sum to 1.0.
func NewTable(neutral evidence.ScoreTriple) (*Table, error) {
	if !neutral.IsNormalized() {
		return nil, fmt.Errorf("neutral row %s does not sum to 1.0", neutral)
	}
	tbl := &Table{}
	for k := 0; k < evidence.NumKinds; k++ {
		rows, ok := defaultRows[evidence.SignatureKind(k)]
		if !ok {
			for env := range rows {
				for loc := range rows[env] {
					rows[env][loc] = neutral
				}
			}
		}
		tbl.rows[k] = rows
	}
	return tbl, nil
}

// BaseScore looks up the base triple. Out-of-range kinds or locator states
// fall back to the unknown row and wildcard column, so the lookup is total.
func (tbl *Table) BaseScore(kind evidence.SignatureKind, envHealthy bool, locator evidence.LocatorState) evidence.ScoreTriple {
	if kind < 0 || int(kind) >= evidence.NumKinds {
		kind = evidence.KindUnknown
	}
	if locator < 0 || int(locator) >= evidence.NumLocatorStates {
		locator = evidence.LocatorUnknown
	}
	return tbl.rows[kind][envIndex(envHealthy)][locator]
}

var defaultTable = DefaultTable()

// BaseScore looks up the base triple in the default table.
func BaseScore(kind evidence.SignatureKind, envHealthy bool, locator evidence.LocatorState) evidence.ScoreTriple {
	return defaultTable.BaseScore(kind, envHealthy, locator)
}

func envIndex(healthy bool) int {
	if healthy {
		return envHealthy
	}
	return envUnhealthy
}
