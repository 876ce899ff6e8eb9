// Package scope defines the administrative scopes a rule script belongs to.
//
// Scopes nest from broad to specific: an organization contains branches,
// and a branch contains users. When the same rule is defined at several
// scopes, the most specific one wins.
package scope

import (
	"fmt"
	"strings"
)

// Type is the kind of scope a script is attached to.
type Type string

const (
	Org    Type = "ORG"
	Branch Type = "BRANCH"
	User   Type = "USER"
)

// Types returns all scope types from least to most specific.
func Types() []Type {
	return []Type{Org, Branch, User}
}

// Specificity orders scope types: ORG < BRANCH < USER.
// It returns -1 for an unknown type.
func (t Type) Specificity() int {
	switch t {
	case Org:
		return 0
	case Branch:
		return 1
	case User:
		return 2
	default:
		return -1
	}
}

// IsValid returns true for ORG, BRANCH and USER.
func (t Type) IsValid() bool {
	return t.Specificity() >= 0
}

// Dir returns the lower-case directory name used for scripts of this type.
func (t Type) Dir() string {
	return strings.ToLower(string(t))
}

// String returns the type name.
func (t Type) String() string {
	return string(t)
}

// ParseType parses a scope type name, ignoring case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown scope type %q (want org, branch or user)", s)
	}
	return t, nil
}

// Descriptor identifies one script: its scope type and the id of the
// organization, branch or user it belongs to. Descriptors are comparable
// and used as cache keys.
type Descriptor struct {
	Type Type
	ID   string
}

// New creates a descriptor.
func New(t Type, id string) Descriptor {
	return Descriptor{Type: t, ID: id}
}

// Validate checks that the descriptor names a known type and a non-empty id.
func (d Descriptor) Validate() error {
	if !d.Type.IsValid() {
		return fmt.Errorf("unknown scope type %q", d.Type)
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%s scope requires an id", d.Type)
	}
	return nil
}

// String returns "TYPE:id".
func (d Descriptor) String() string {
	return fmt.Sprintf("%s:%s", d.Type, d.ID)
}

// ParseDescriptor parses "type:id", e.g. "org:acme".
func ParseDescriptor(s string) (Descriptor, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok {
		return Descriptor{}, fmt.Errorf("invalid scope %q (want type:id, e.g. org:acme)", s)
	}
	t, err := ParseType(typ)
	if err != nil {
		return Descriptor{}, err
	}
	d := New(t, strings.TrimSpace(id))
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
