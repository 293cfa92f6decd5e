package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// ParseLine decodes the seven-field prefix of a value-tuple line:
//
//	('row','ref','item_id','type','item name',original,selling,...
//
// Leading whitespace is ignored. Whatever follows the comma after the
// seventh field is not inspected. ok is false when the line does not have
// that shape or a price is not a decimal number.
func ParseLine(line string) (rec prodmig.Record, ok bool) {
	p := &lineParser{s: strings.TrimLeftFunc(line, unicode.IsSpace)}

	if !p.consume('(') {
		return prodmig.Record{}, false
	}

	var fields [4]string
	for i := range fields {
		if i > 0 && !p.separator() {
			return prodmig.Record{}, false
		}
		f, ok := p.plainQuoted()
		if !ok {
			return prodmig.Record{}, false
		}
		fields[i] = f
	}

	if !p.separator() {
		return prodmig.Record{}, false
	}
	name, ok := p.escapedQuoted()
	if !ok {
		return prodmig.Record{}, false
	}

	var prices [2]decimal.Decimal
	for i := range prices {
		if !p.separator() {
			return prodmig.Record{}, false
		}
		d, ok := p.number()
		if !ok {
			return prodmig.Record{}, false
		}
		prices[i] = d
	}

	if !p.consume(',') {
		return prodmig.Record{}, false
	}

	return prodmig.Record{
		ItemID:        fields[2],
		ItemName:      name,
		OriginalPrice: prices[0],
		SellingPrice:  prices[1],
	}, true
}

// lineParser is a forward-only cursor over one line.
type lineParser struct {
	s   string
	pos int
}

func (p *lineParser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *lineParser) consume(c byte) bool {
	if b, ok := p.peek(); ok && b == c {
		p.pos++
		return true
	}
	return false
}

// separator accepts a comma followed by optional whitespace.
func (p *lineParser) separator() bool {
	if !p.consume(',') {
		return false
	}
	for p.pos < len(p.s) {
		r, size := utf8.DecodeRuneInString(p.s[p.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		p.pos += size
	}
	return true
}

// plainQuoted reads '...' where the body holds no quote at all.
func (p *lineParser) plainQuoted() (string, bool) {
	if !p.consume('\'') {
		return "", false
	}
	end := strings.IndexByte(p.s[p.pos:], '\'')
	if end < 0 {
		return "", false
	}
	v := p.s[p.pos : p.pos+end]
	p.pos += end + 1
	return v, true
}

// escapedQuoted reads '...' where a doubled quote stands for one literal quote.
func (p *lineParser) escapedQuoted() (string, bool) {
	if !p.consume('\'') {
		return "", false
	}

	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c != '\'' {
			b.WriteByte(c)
			p.pos++
			continue
		}
		if p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
			b.WriteByte('\'')
			p.pos += 2
			continue
		}
		p.pos++
		return b.String(), true
	}
	return "", false
}

// number reads a bare numeric literal: a run of digits, dots and signs that
// must parse as a decimal.
func (p *lineParser) number() (decimal.Decimal, bool) {
	start := p.pos
	for p.pos < len(p.s) && isNumberByte(p.s[p.pos]) {
		p.pos++
	}
	lit := p.s[start:p.pos]
	if lit == "" {
		return decimal.Decimal{}, false
	}

	lit = strings.TrimPrefix(lit, "+")
	if lit == "" || strings.ContainsAny(lit, "+") {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

// IsCandidate reports whether a line looks like the start of a value tuple.
func IsCandidate(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), prodmig.TupleMarker)
}
