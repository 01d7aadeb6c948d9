package story

import (
	"bytes"
	"fmt"
	"strconv"
)

// ByteRenderer accumulates output in a byte buffer.
// Render accepts strings, byte slices, single bytes and ints, so that callers can
// build a fragment in one call without intermediate concatenations.
type ByteRenderer struct {
	buf bytes.Buffer
}

func (br *ByteRenderer) Render(args ...any) {
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			br.buf.WriteString(v)
		case []byte:
			br.buf.Write(v)
		case byte:
			br.buf.WriteByte(v)
		case rune:
			br.buf.WriteRune(v)
		case int:
			br.buf.WriteString(strconv.Itoa(v))
		default:
			fmt.Fprint(&br.buf, v)
		}
	}
}

func (br *ByteRenderer) String() string {
	return br.buf.String()
}
