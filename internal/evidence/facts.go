package evidence

// Facts is the flattened view of a failure's evidence that the scoring and
// validation rules read. Absent evidence blocks leave their Known flag false
// and fall back to neutral values.
type Facts struct {
	Kind       SignatureKind
	HasLocator bool

	EnvKnown      bool
	EnvHealthy    bool
	EnvAccessible bool
	HealthScore   float64

	RepoKnown       bool
	LocatorFound    LocatorState
	RecentlyChanged bool
	DaysSinceChange *int
	ExpectedChange  bool

	ConsoleKnown  bool
	ServerErrors  bool
	NetworkErrors bool
	AuthErrors    bool

	FlakyHistory  bool
	PassedOnRetry bool

	// Timeline is set once a comparison has produced a verdict.
	Timeline *TimelineVerdict
}

// FactsFrom flattens in and sig. A change within recentDays counts as recent
// even when the collaborator did not set RecentlyChanged. A missing environment
// block is read as healthy and accessible, so the table is not pushed towards
// infrastructure by an absence of data.
func FactsFrom(in FailureInput, sig FailureSignature, recentDays int) Facts {
	f := Facts{
		Kind:          sig.Kind,
		HasLocator:    sig.Locator != nil,
		EnvHealthy:    true,
		EnvAccessible: true,
		HealthScore:   1,
	}
	if env := in.Environment; env != nil {
		f.EnvKnown = true
		f.EnvHealthy = env.Healthy
		f.EnvAccessible = env.Accessible
		f.HealthScore = clamp01(env.HealthScore)
	}
	if repo := in.Repository; repo != nil {
		f.RepoKnown = true
		f.LocatorFound = repo.LocatorFound
		f.DaysSinceChange = repo.DaysSinceChange
		f.RecentlyChanged = repo.RecentlyChanged ||
			(repo.DaysSinceChange != nil && *repo.DaysSinceChange >= 0 && *repo.DaysSinceChange <= recentDays)
		f.ExpectedChange = repo.ExpectedChange
	}
	if c := in.Console; c != nil {
		f.ConsoleKnown = true
		f.ServerErrors = c.HasServerErrors
		f.NetworkErrors = c.HasNetworkErrors
		f.AuthErrors = c.HasAuthErrors
	}
	if fl := in.Flakiness; fl != nil {
		f.FlakyHistory = fl.FlakyHistory
		f.PassedOnRetry = fl.PassedOnRetry
	}
	return f
}

// EnvUsable reports whether the environment is both healthy and reachable.
func (f Facts) EnvUsable() bool {
	return f.EnvHealthy && f.EnvAccessible
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
