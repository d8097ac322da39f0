package hcpdf

import "strings"

// Cookie is a name/value pair forwarded from the inbound request.
type Cookie struct {
	Name  string
	Value string
}

// ParseCookieHeader parses one or more Cookie header values.
// Each pair is split on its first "=" so values may contain "=".
// Pairs without a name are dropped; order is preserved.
func ParseCookieHeader(values []string) []Cookie {
	var cookies []Cookie
	for _, header := range values {
		for _, part := range strings.Split(header, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, value, _ := strings.Cut(part, "=")
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			cookies = append(cookies, Cookie{Name: name, Value: strings.TrimSpace(value)})
		}
	}
	return cookies
}
