// Package command holds the types shared by the rotation transports: the
// rotation entry model, the transport error taxonomy and the rejection
// classifier. Both the CRCON HTTP client and the RCON v2 socket client
// speak in these terms so the failover layer can treat them uniformly.
package command

import (
	"errors"
	"fmt"
	"strings"
)

// MapEntry is one rotation or catalog entry as reported by the remote
// server. ID carries the internal layer identifier the mutation API
// requires; PrettyName is the human-readable display name; MapName is the
// base map name without mode/variant suffixes. Any field may be empty
// depending on which transport produced the entry.
type MapEntry struct {
	ID         string
	MapName    string
	PrettyName string
}

// Canonical returns the first non-empty identifier in extraction priority
// order: layer ID, map name, display name.
func (e MapEntry) Canonical() string {
	if s := strings.TrimSpace(e.ID); s != "" {
		return s
	}
	if s := strings.TrimSpace(e.MapName); s != "" {
		return s
	}
	return strings.TrimSpace(e.PrettyName)
}

// Keys returns every non-empty identifier carried by the entry, canonical
// first. Callers index all of them to the canonical one.
func (e MapEntry) Keys() []string {
	var out []string
	for _, s := range []string{e.ID, e.MapName, e.PrettyName} {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ErrorKind partitions transport failures by what the caller can do about
// them.
type ErrorKind int

const (
	// KindNetwork covers connection, timeout and TLS failures; the request
	// may never have reached the server.
	KindNetwork ErrorKind = iota
	// KindAuth covers missing or refused credentials.
	KindAuth
	// KindProtocol covers responses the client could not interpret.
	KindProtocol
	// KindRejected covers requests the server understood and refused.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindProtocol:
		return "protocol"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// RejectedReason narrows KindRejected errors. It is computed once at the
// transport boundary so callers never re-parse server error text.
type RejectedReason int

const (
	// ReasonUnknown means the rejection text matched no known pattern.
	ReasonUnknown RejectedReason = iota
	// ReasonNotApplicable means the requested change is already in effect
	// (map not in rotation on remove, already present on add). Callers
	// treat it as a successful no-op.
	ReasonNotApplicable
	// ReasonInvalidName means the server did not recognize the submitted
	// map identifier. Callers may retry with an alternate spelling.
	ReasonInvalidName
)

func (r RejectedReason) String() string {
	switch r {
	case ReasonNotApplicable:
		return "not_applicable"
	case ReasonInvalidName:
		return "invalid_name"
	default:
		return "unknown"
	}
}

// TransportError is the typed failure returned by every transport call.
type TransportError struct {
	Kind      ErrorKind
	Transport string
	Op        string
	Status    int
	Reason    RejectedReason
	Body      string
	Err       error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Transport, e.Op, e.Kind)
	if e.Kind == KindRejected {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNoOp reports whether err is a rejection the caller should treat as an
// idempotent success.
func IsNoOp(err error) bool {
	te, ok := AsTransportError(err)
	return ok && te.Kind == KindRejected && te.Reason == ReasonNotApplicable
}

// AsTransportError unwraps err into a *TransportError if it carries one.
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
