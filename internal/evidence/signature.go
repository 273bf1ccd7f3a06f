package evidence

import (
	"fmt"
)

// SignatureKind classifies the shape of a failure message.
type SignatureKind int

const (
	KindUnknown SignatureKind = iota
	KindTimeout
	KindLocatorNotFound
	KindNetwork
	KindAssertion
	KindServerError
	KindAuthError
	KindNotFound
)

// NumKinds is the number of signature kinds, for kind-indexed tables.
const NumKinds = 8

var kindNames = [NumKinds]string{
	KindUnknown:         "unknown",
	KindTimeout:         "timeout",
	KindLocatorNotFound: "locator_not_found",
	KindNetwork:         "network",
	KindAssertion:       "assertion",
	KindServerError:     "server_error",
	KindAuthError:       "auth_error",
	KindNotFound:        "not_found",
}

func (k SignatureKind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k SignatureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SignatureKind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind name. The empty string is unknown.
func ParseKind(s string) (SignatureKind, error) {
	if s == "" {
		return KindUnknown, nil
	}
	for i, name := range kindNames {
		if name == s {
			return SignatureKind(i), nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown signature kind %q", s)
}

// FailureSignature is the structured summary of one failure message.
type FailureSignature struct {
	Kind    SignatureKind `json:"kind"`
	File    string        `json:"file,omitempty"`
	Line    int           `json:"line,omitempty"`
	Locator *string       `json:"locator"`
}

// HasLocation reports whether an offending frame was found.
func (s FailureSignature) HasLocation() bool {
	return s.File != ""
}

// LocatorValue returns the locator or "" when none was extracted.
func (s FailureSignature) LocatorValue() string {
	if s.Locator == nil {
		return ""
	}
	return *s.Locator
}
