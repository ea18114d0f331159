// Package atomtype implements AtomType, the triple used to decide connection
// compatibility and to render output (spec.md §3).
package atomtype

import (
	"strconv"
	"strings"
)

// AtomType is a triple (element, isotope-like numeric tag, chemical-context
// tag), parsed from "<element>[.<context>][<digit>]". Equality is
// componentwise.
type AtomType struct {
	Element string
	Tag     int
	Context string
}

// Parse decodes a string of the form "<element>[.<context>][<digit>]" into
// an AtomType. The trailing digit, if present, is the numeric tag; the
// optional ".<context>" segment carries the chemical-context tag.
func Parse(s string) AtomType {
	tag := 0
	end := len(s)
	for end > 0 && s[end-1] >= '0' && s[end-1] <= '9' {
		end--
	}
	if end < len(s) {
		if n, err := strconv.Atoi(s[end:]); err == nil {
			tag = n
		}
	}

	elementPart := s[:end]
	context := ""
	if i := strings.IndexByte(elementPart, '.'); i >= 0 {
		context = elementPart[i+1:]
		elementPart = elementPart[:i]
	}

	return AtomType{Element: elementPart, Tag: tag, Context: context}
}

// Equal reports componentwise equality.
func (a AtomType) Equal(b AtomType) bool {
	return a.Element == b.Element && a.Tag == b.Tag && a.Context == b.Context
}

// String renders the AtomType back to its "<element>[.<context>][<digit>]" form.
func (a AtomType) String() string {
	var sb strings.Builder
	sb.WriteString(a.Element)
	if a.Context != "" {
		sb.WriteByte('.')
		sb.WriteString(a.Context)
	}
	if a.Tag != 0 {
		sb.WriteString(strconv.Itoa(a.Tag))
	}
	return sb.String()
}

// AllowList is an unordered set of AtomTypes a rigid stub accepts.
type AllowList []AtomType

// Contains reports whether t is in the allow-list.
func (al AllowList) Contains(t AtomType) bool {
	for _, e := range al {
		if e.Equal(t) {
			return true
		}
	}
	return false
}
