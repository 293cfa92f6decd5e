package extract

import (
	"strings"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// TupleFields carries the positional fields the parser ignores, so a record
// can be written back as a complete value-tuple prefix.
type TupleFields struct {
	RowID    string
	Ref      string
	Category string

	// Rest is the raw text of fields 8 onwards. The parser needs a comma after
	// the seventh field, so an empty Rest is written as NULL.
	Rest string
}

// FormatTuple writes r as a value-tuple line that ParseLine decodes back to r.
// Quotes in the item name are doubled. ItemID and the ignored fields must not
// contain quotes.
func FormatTuple(f TupleFields, r prodmig.Record) string {
	var b strings.Builder
	b.WriteString("('")
	b.WriteString(f.RowID)
	b.WriteString("','")
	b.WriteString(f.Ref)
	b.WriteString("','")
	b.WriteString(r.ItemID)
	b.WriteString("','")
	b.WriteString(f.Category)
	b.WriteString("','")
	b.WriteString(QuoteEscape(r.ItemName))
	b.WriteString("',")
	b.WriteString(r.OriginalPrice.String())
	b.WriteByte(',')
	b.WriteString(r.SellingPrice.String())
	b.WriteByte(',')
	if f.Rest == "" {
		b.WriteString("NULL")
	} else {
		b.WriteString(f.Rest)
	}
	b.WriteString("),")
	return b.String()
}

// QuoteEscape doubles every single quote.
func QuoteEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
