package geo

import (
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// Resolver answers country lookups for client IPs. It is a fallback for
// deployments without an edge proxy injecting a country header; when the
// GeoIP database is absent or disabled every lookup returns "".
type Resolver struct {
	db *geoip2.Reader
	ok bool
}

func NewResolver(dbPath string, enabled bool) *Resolver {
	r := &Resolver{}
	if !enabled {
		return r
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		log.Warn().Err(err).Str("path", dbPath).Msg("geoip: failed opening db, continuing without geo")
		return r
	}
	r.db = db
	r.ok = true
	return r
}

// Country returns the ISO country code for ip, or "" when unknown.
func (r *Resolver) Country(ip net.IP) string {
	if !r.ok || ip == nil {
		return ""
	}
	country, err := r.db.Country(ip)
	if err != nil {
		return ""
	}
	return country.Country.IsoCode
}

func (r *Resolver) Close() {
	if r.db != nil {
		r.db.Close()
	}
}
