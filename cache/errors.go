package cache

import (
	"errors"
	"strings"
)

// Kind classifies a failure of the cache layer.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSourceFetch
	KindSourceParse
	KindCacheRead
	KindCacheWrite
	KindIndexSync
)

func (k Kind) String() string {
	switch k {
	case KindSourceFetch:
		return "source fetch failure"
	case KindSourceParse:
		return "source parse failure"
	case KindCacheRead:
		return "cache read failure"
	case KindCacheWrite:
		return "cache write failure"
	case KindIndexSync:
		return "index sync failure"
	default:
		return "unknown failure"
	}
}

// Error is a classified failure. Match a kind with errors.Is against the
// Err* kind sentinels, or read it with KindOf.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

// NewError classifies err under kind.
func NewError(kind Kind, op, key string, err error) error {
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Key != "" {
		b.WriteString(" [")
		b.WriteString(e.Key)
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels: a bare *Error with only Kind set.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Key == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrSourceFetch = &Error{Kind: KindSourceFetch}
	ErrSourceParse = &Error{Kind: KindSourceParse}
	ErrCacheRead   = &Error{Kind: KindCacheRead}
	ErrCacheWrite  = &Error{Kind: KindCacheWrite}
	ErrIndexSync   = &Error{Kind: KindIndexSync}
)

var (
	// ErrItemNotFound reports an item absent from the authoritative price table.
	ErrItemNotFound = errors.New("item not found")

	// ErrIconNotFound reports that no category catalog lists the item.
	ErrIconNotFound = errors.New("icon not found")

	// ErrUnsupportedPath is returned when writing through a filter path.
	ErrUnsupportedPath = errors.New("path is not writable")
)

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
