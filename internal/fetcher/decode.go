package fetcher

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Encoding is one named attempt in an ordered decode chain.
type Encoding struct {
	Name   string
	decode func([]byte) ([]byte, error)
}

// Decode converts data to UTF-8 with this encoding.
func (e Encoding) Decode(data []byte) ([]byte, error) {
	return e.decode(data)
}

// UTF8 accepts only valid UTF-8 and strips a leading byte order mark.
var UTF8 = Encoding{Name: "utf-8", decode: decodeStrictUTF8}

// Latin1 decodes ISO-8859-1. It never fails.
var Latin1 = FromXText("latin-1", charmap.ISO8859_1)

// DefaultEncodings is the primary/fallback pair used for Câmara extracts.
var DefaultEncodings = []Encoding{UTF8, Latin1}

// FromXText adapts an x/text encoding.
func FromXText(name string, enc encoding.Encoding) Encoding {
	return Encoding{
		Name: name,
		decode: func(data []byte) ([]byte, error) {
			out, err := enc.NewDecoder().Bytes(data)
			if err != nil {
				return nil, eris.Wrapf(err, "decode %s", name)
			}
			return out, nil
		},
	}
}

// LookupEncoding resolves an encoding label. "utf-8" is strict, the Latin-1
// aliases map to ISO-8859-1, and anything else goes through the WHATWG index.
func LookupEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return UTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return Latin1, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Encoding{}, eris.Wrapf(err, "fetcher: unsupported encoding %q", name)
	}
	return FromXText(name, enc), nil
}

// LookupEncodings resolves an ordered list of labels.
func LookupEncodings(names []string) ([]Encoding, error) {
	if len(names) == 0 {
		return nil, eris.New("fetcher: no encodings configured")
	}
	out := make([]Encoding, 0, len(names))
	for _, n := range names {
		enc, err := LookupEncoding(n)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// Decode tries each encoding in order and returns the first successful
// result with the name of the encoding that produced it.
func Decode(data []byte, encs []Encoding) ([]byte, string, error) {
	if len(encs) == 0 {
		return nil, "", eris.New("fetcher: decode: no encodings")
	}
	var errs []string
	for _, enc := range encs {
		out, err := enc.Decode(data)
		if err == nil {
			return out, enc.Name, nil
		}
		errs = append(errs, err.Error())
	}
	return nil, "", eris.Errorf("fetcher: decode: all encodings failed: %s", strings.Join(errs, "; "))
}

func decodeStrictUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, bomUTF8)
	if !utf8.Valid(data) {
		return nil, eris.New("decode utf-8: invalid byte sequence")
	}
	return data, nil
}
