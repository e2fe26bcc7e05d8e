package netutil

import (
	"net"
	"net/http"
	"strings"
)

// UnknownCountry is the bucket for events whose origin country could not
// be determined.
const UnknownCountry = "XX"

// ipHeaders in precedence order. The first parseable address wins; within
// X-Forwarded-For the first entry is the original client.
var ipHeaders = []string{"X-Forwarded-For", "CF-Connecting-IP", "X-Real-IP"}

// ClientIP extracts the originating client address from forwarding headers,
// falling back to the transport peer.
func ClientIP(r *http.Request) net.IP {
	for _, h := range ipHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		for p := range strings.SplitSeq(v, ",") {
			if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

// countryHeaders as injected by edge proxies, in precedence order.
var countryHeaders = []string{"X-Vercel-IP-Country", "CF-IPCountry"}

// CountryCode returns the two-letter country code an edge proxy attached to
// the request, or "" when none did.
func CountryCode(r *http.Request) string {
	for _, h := range countryHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return strings.ToUpper(v)
		}
	}
	return ""
}
