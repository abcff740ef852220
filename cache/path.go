package cache

import (
	"encoding/json"
	"strings"
)

type pathKind uint8

const (
	pathRoot pathKind = iota
	pathKey
	pathFilter
)

// Path addresses a region of a cached JSON document.
type Path struct {
	kind  pathKind
	name  string
	field string
	value string
}

// Root addresses the whole document.
func Root() Path {
	return Path{kind: pathRoot}
}

// Key addresses a top-level member by its literal name.
func Key(name string) Path {
	return Path{kind: pathKey, name: name}
}

// Where matches every element whose field equals value.
func Where(field, value string) Path {
	return Path{kind: pathFilter, field: field, value: value}
}

// IsRoot reports whether p addresses the whole document.
func (p Path) IsRoot() bool {
	return p.kind == pathRoot
}

// Literal returns the member name of a Key path.
func (p Path) Literal() (string, bool) {
	return p.name, p.kind == pathKey
}

// Filter returns the field and value of a Where path.
func (p Path) Filter() (field, value string, ok bool) {
	return p.field, p.value, p.kind == pathFilter
}

// String renders p in RedisJSON JSONPath syntax.
func (p Path) String() string {
	switch p.kind {
	case pathKey:
		return "$[" + quote(p.name) + "]"
	case pathFilter:
		return "$[?(@." + p.field + "==" + quote(p.value) + ")]"
	default:
		return "$"
	}
}

func quote(s string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// encoding a string never fails
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
