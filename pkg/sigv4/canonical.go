package sigv4

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// canonicalRequest builds the byte-stable serialization of the request
// that serves as signing input, and the semicolon-joined list of signed
// header names. Header and query ordering is sorted so the result does
// not depend on map iteration order.
func canonicalRequest(req *http.Request, bodyHash string) (canonical, signedHeaders string) {
	path := req.URL.EscapedPath()
	if path == "" {
		path = "/"
	}

	headers, signedHeaders := canonicalHeaders(req)

	var b strings.Builder
	b.WriteString(strings.ToUpper(req.Method))
	b.WriteByte('\n')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(canonicalQuery(req.URL.Query()))
	b.WriteByte('\n')
	b.WriteString(headers)
	b.WriteByte('\n')
	b.WriteString(signedHeaders)
	b.WriteByte('\n')
	b.WriteString(bodyHash)
	return b.String(), signedHeaders
}

// canonicalQuery percent-encodes keys and values per RFC 3986 (space as
// %20, never +) and sorts by key, then by value for repeated keys.
func canonicalQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	byKey := make(map[string][]string, len(values))
	keys := make([]string, 0, len(values))
	for key, vals := range values {
		encKey := uriEncode(key)
		if _, seen := byKey[encKey]; !seen {
			keys = append(keys, encKey)
		}
		for _, v := range vals {
			byKey[encKey] = append(byKey[encKey], uriEncode(v))
		}
	}
	sort.Strings(keys)

	var pairs []string
	for _, key := range keys {
		vals := byKey[key]
		sort.Strings(vals)
		for _, v := range vals {
			pairs = append(pairs, key+"="+v)
		}
	}
	return strings.Join(pairs, "&")
}

// canonicalHeaders lower-cases names, trims and collapses value
// whitespace, sorts by name and joins with trailing newlines. Host is
// always included; a pre-existing Authorization header never is.
func canonicalHeaders(req *http.Request) (headers, signed string) {
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	byName := map[string]string{"host": trimHeaderValue(host)}
	for name, vals := range req.Header {
		lower := strings.ToLower(name)
		if lower == "authorization" || lower == "host" {
			continue
		}
		trimmed := make([]string, len(vals))
		for i, v := range vals {
			trimmed[i] = trimHeaderValue(v)
		}
		byName[lower] = strings.Join(trimmed, ",")
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(byName[name])
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(names, ";")
}

// trimHeaderValue removes leading/trailing whitespace and collapses
// internal runs of spaces to a single space.
func trimHeaderValue(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

const uriUnreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// uriEncode percent-encodes every byte outside the RFC 3986 unreserved
// set, with uppercase hex digits.
func uriEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(uriUnreserved, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte("0123456789ABCDEF"[c>>4])
		b.WriteByte("0123456789ABCDEF"[c&0xf])
	}
	return b.String()
}
