package signature

import (
	"regexp"

	"triage/internal/evidence"
)

// family is one ordered keyword family. Patterns run against lower-cased text.
type family struct {
	Kind     evidence.SignatureKind
	Patterns []*regexp.Regexp
}

func mustAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// families is evaluated top to bottom; the first family with a matching
// pattern decides the kind.
var families = []family{
	{evidence.KindTimeout, mustAll(
		`\btime[d]?\s*out\b`, `\btimeout\b`, `timeouterror`, `deadline exceeded`,
		`\bexceeded\b.*\b\d+\s*m?s\b`, `\betimedout\b`,
	)},
	{evidence.KindLocatorNotFound, mustAll(
		`expected to find element`, `element\b.*\b(not|never) found`, `nosuchelement`,
		`unable to locate element`, `could not find (element|selector)`, `no element (found|matching)`,
		`selector\b.*\bnot found`, `failed to find`,
	)},
	{evidence.KindNetwork, mustAll(
		`econnrefused`, `econnreset`, `enotfound`, `ehostunreach`, `connection (refused|reset|closed)`,
		`network (error|failure|is unreachable)`, `socket hang up`, `\bdns\b`, `no route to host`,
	)},
	{evidence.KindAssertion, mustAll(
		`assertionerror`, `\bassert`, `\bexpected\b.*\bto\b`, `\bto (deep )?equal\b`,
		`\bexpected\b.*\bgot\b`, `\bshould (be|have|equal|contain)\b`,
	)},
	{evidence.KindServerError, mustAll(
		`\b50[0-4]\b`, `internal server error`, `bad gateway`, `service unavailable`, `gateway timeout`,
	)},
	{evidence.KindAuthError, mustAll(
		`\b40[13]\b`, `unauthori[sz]ed`, `forbidden`, `permission denied`, `authentication (failed|required)`,
	)},
	{evidence.KindNotFound, mustAll(
		`\b404\b`, `not found`, `no such`, `does not exist`,
	)},
}

// Families returns the kinds in evaluation order, for documentation and tests.
func Families() []evidence.SignatureKind {
	out := make([]evidence.SignatureKind, 0, len(families)+1)
	for _, f := range families {
		out = append(out, f.Kind)
	}
	return append(out, evidence.KindUnknown)
}

func classify(lower string) evidence.SignatureKind {
	for _, f := range families {
		for _, re := range f.Patterns {
			if re.MatchString(lower) {
				return f.Kind
			}
		}
	}
	return evidence.KindUnknown
}
