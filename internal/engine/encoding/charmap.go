package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// charmapEncoding adapts a single-byte code page from x/text. A byte is
// invalid when the code page leaves it undefined.
type charmapEncoding struct {
	name    string
	cm      *charmap.Charmap
	ascii   bool
	invalid [256]bool
}

func newCharmapEncoding(cm *charmap.Charmap) *charmapEncoding {
	e := &charmapEncoding{cm: cm, ascii: true}
	name, err := ianaindex.IANA.Name(cm)
	if err != nil || name == "" {
		name = cm.String()
	}
	e.name = name
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r == utf8.RuneError {
			e.invalid[i] = true
		}
		if i < utf8.RuneSelf && r != rune(i) {
			e.ascii = false
		}
	}
	return e
}

func (e *charmapEncoding) Name() string          { return e.name }
func (e *charmapEncoding) ASCIICompatible() bool { return e.ascii }
func (e *charmapEncoding) MinLength() int        { return 1 }
func (e *charmapEncoding) MaxLength() int        { return 1 }

func (e *charmapEncoding) Scan(b []byte) (CodeRange, int) {
	cr := ASCIIOnly
	if !e.ascii {
		cr = Valid
	}
	for _, c := range b {
		if e.invalid[c] {
			return Broken, len(b)
		}
		if c >= utf8.RuneSelf && cr == ASCIIOnly {
			cr = Valid
		}
	}
	return cr, len(b)
}
