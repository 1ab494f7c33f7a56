package directory

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/emf99/zkSMT/protocol"
)

// proofData returns the circuit inputs of key as JSON text:
// the decimal root and three siblings, each the sum of the numeric key
// and value of another entry.
func (d *Directory) proofData(key string) (string, bool) {
	if !d.tree.Contains(key) {
		return "", false
	}
	siblings := defaultSiblings
	i := 0
	for _, e := range d.tree.Entries() {
		if i == siblingSlots {
			break
		}
		if e.Key == key {
			continue
		}
		siblings[i] = protocol.ParseU64OrZero(e.Key) + protocol.ParseU64OrZero(e.Value)
		i++
	}
	b, err := protocol.MarshalCompact(&struct {
		ExpectedRoot string               `json:"expectedRoot"`
		Siblings     [siblingSlots]uint64 `json:"siblings"`
	}{d.rootDecimal(), siblings})
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (d *Directory) stats() string {
	entries := d.tree.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = debugQuote(e.Key) + ": " + debugQuote(e.Value)
	}
	return fmt.Sprintf("SMT Statistics:\n- Root: %s\n- Total entries: %d\n- Entries: {%s}",
		d.rootDecimal(), len(entries), strings.Join(parts, ", "))
}

// debugQuote double-quotes s for the stats text. Quotes, backslashes,
// \t, \r, \n and \0 are backslash-escaped. Other unprintable runes and
// combining marks are written as \u{hex}. Everything else is literal.
func debugQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case 0:
			b.WriteString(`\0`)
		default:
			if !unicode.IsPrint(r) || unicode.In(r, unicode.Mn, unicode.Me) {
				fmt.Fprintf(&b, `\u{%x}`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
