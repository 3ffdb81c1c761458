package cipher

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultSignatureParam is the URL parameter a deciphered signature is
// attached to when the cipher does not name one.
const DefaultSignatureParam = "signature"

// SignatureCipher is a decoded signatureCipher query string.
type SignatureCipher struct {
	URL       string
	Signature string
	Param     string
}

// DecodeComponent decodes %XX escapes whose XX is valid hex and turns '+'
// into a space. Anything else, including malformed escapes, passes through.
func DecodeComponent(s string) string {
	if strings.IndexByte(s, '%') < 0 && strings.IndexByte(s, '+') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// ParseQuery splits s into pairs on '&' only. The first '=' of a pair ends the
// key; later ones belong to the value. Pairs with an empty key are dropped and
// a repeated key keeps its last value.
func ParseQuery(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		out[DecodeComponent(key)] = DecodeComponent(value)
	}
	return out
}

// ParseSignatureCipher decodes a signatureCipher value. Both url and s must be
// present and non-empty; sp defaults to DefaultSignatureParam.
func ParseSignatureCipher(raw string) (SignatureCipher, error) {
	q := ParseQuery(raw)
	sc := SignatureCipher{URL: q["url"], Signature: q["s"], Param: q["sp"]}
	var missing []string
	if sc.URL == "" {
		missing = append(missing, "url")
	}
	if sc.Signature == "" {
		missing = append(missing, "s")
	}
	if len(missing) > 0 {
		return SignatureCipher{}, NewError(ErrCodeCipherMalformed, "signature cipher is missing required keys", map[string]any{
			"missing": missing,
		})
	}
	if sc.Param == "" {
		sc.Param = DefaultSignatureParam
	}
	return sc, nil
}

var embeddedURLRe = regexp.MustCompile(`(?:^|&)url=([^&]+)`)

// EmbeddedURL returns the decoded url parameter of a raw cipher string without
// deciphering anything. The result lacks a valid signature and is only a best
// effort when deciphering is impossible.
func EmbeddedURL(raw string) (string, bool) {
	m := embeddedURLRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return "", false
	}
	u := DecodeComponent(m[1])
	if _, err := url.Parse(u); err != nil {
		return "", false
	}
	return u, true
}

// SignedURL appends the deciphered signature to the cipher's base URL under
// its signature parameter, keeping the existing query untouched.
func (sc SignatureCipher) SignedURL(signature string) (string, error) {
	u, err := url.Parse(sc.URL)
	if err != nil {
		return "", NewError(ErrCodeCipherMalformed, "signature cipher url is invalid", err.Error())
	}
	param := sc.Param
	if param == "" {
		param = DefaultSignatureParam
	}
	extra := url.QueryEscape(param) + "=" + url.QueryEscape(signature)
	if u.RawQuery == "" {
		u.RawQuery = extra
	} else {
		u.RawQuery += "&" + extra
	}
	return u.String(), nil
}
