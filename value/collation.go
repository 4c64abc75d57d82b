package value

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// KeyFlavor mirrors spec.md §4.1's collation "unique key flavor" versus a
// sort-only key; the join always asks for Unique since it needs a
// byte-comparable image that distinguishes values, not just orders them.
type KeyFlavor int

const (
	FlavorUnique KeyFlavor = iota
	FlavorSort
)

// CollationService is the narrow external collaborator spec.md §6 names:
// "stringToKey(textType, from, to, flavor=UNIQUE) -> writes into to".
// The join never interprets collated text itself; it only asks this
// service for an opaque, byte-comparable image.
type CollationService interface {
	StringToKey(textType int, from []byte, to []byte, flavor KeyFlavor) int
}

// textCollator adapts golang.org/x/text/collate to the StringToKey
// contract. textType indexes into a small table of registered locales;
// this keeps the join's view of "collation" opaque the way spec.md
// describes it, while the underlying work is real Unicode collation.
type textCollator struct {
	locales []language.Tag
	buf     collate.Buffer
}

// NewCollationService builds a CollationService over the given locale
// table; textType 0 is conventionally the binary/default locale.
func NewCollationService(locales ...language.Tag) CollationService {
	if len(locales) == 0 {
		locales = []language.Tag{language.Und}
	}
	return &textCollator{locales: locales}
}

func (c *textCollator) StringToKey(textType int, from []byte, to []byte, flavor KeyFlavor) int {
	if textType < 0 || textType >= len(c.locales) {
		textType = 0
	}
	col := collate.New(c.locales[textType])
	var opts []collate.Option
	if flavor == FlavorUnique {
		opts = append(opts, collate.Force)
	}
	if len(opts) > 0 {
		col = collate.New(c.locales[textType], opts...)
	}
	key := col.KeyFromString(&c.buf, string(from))

	n := copy(to, key)
	for i := n; i < len(to); i++ {
		to[i] = 0
	}
	return n
}
