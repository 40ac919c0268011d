package sched

import "github.com/google/uuid"

// NamespaceToken is an opaque, comparable identifier issued to a client of
// a TaskGraphRunner. The zero value is invalid; GetNamespaceToken is the
// only way to mint a valid one.
type NamespaceToken struct {
	id    uint64
	debug uuid.UUID
}

// IsValid reports whether the token was issued by GetNamespaceToken, as
// opposed to being a zero value a caller constructed by mistake.
func (t NamespaceToken) IsValid() bool {
	return t.id != 0
}

// String returns a short, log-friendly identifier. The uuid component exists
// purely to disambiguate tokens in concurrent log output across namespaces;
// token identity and map lookups are always by id, never by this string.
func (t NamespaceToken) String() string {
	if !t.IsValid() {
		return "namespace-token(invalid)"
	}
	return t.debug.String()
}
