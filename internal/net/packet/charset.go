package packet

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// charset is the encoding used for every string on the wire. Set once at
// boot from [network] charset; UTF-8 until then.
var charset atomic.Pointer[encoding.Encoding]

// SetCharset selects the string encoding by its WHATWG name ("utf-8",
// "big5", "shift_jis", ...).
func SetCharset(name string) error {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return fmt.Errorf("charset %q: %w", name, err)
	}
	charset.Store(&enc)
	return nil
}

func currentCharset() encoding.Encoding {
	if enc := charset.Load(); enc != nil {
		return *enc
	}
	return encoding.Nop
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// decodeString converts wire bytes to UTF-8. ASCII passes through.
func decodeString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if isASCII(raw) {
		return string(raw)
	}
	decoded, err := currentCharset().NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func encodeString(s string) []byte {
	if isASCII([]byte(s)) {
		return []byte(s)
	}
	encoded, err := currentCharset().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}
