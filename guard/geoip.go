package guard

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

var (
	// ErrGeoIPNotConfigured is returned by a nil or closed GeoIP.
	ErrGeoIPNotConfigured = errors.New("guard: geoip database not configured")

	// ErrInvalidIP is returned when the address does not parse.
	ErrInvalidIP = errors.New("guard: invalid ip address")
)

// GeoIP resolves visitor addresses against a MaxMind GeoLite2-City database.
type GeoIP struct {
	db *geoip2.Reader
}

// OpenGeoIP opens a GeoLite2-City .mmdb file.
func OpenGeoIP(path string) (*GeoIP, error) {
	if path == "" {
		return nil, ErrGeoIPNotConfigured
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("guard: failed to open geoip database: %w", err)
	}
	return &GeoIP{db: db}, nil
}

// Lookup returns the country and city for an address, preferring English
// names.
func (g *GeoIP) Lookup(ip string) (country, city string, err error) {
	if g == nil || g.db == nil {
		return "", "", ErrGeoIPNotConfigured
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidIP, ip)
	}

	record, err := g.db.City(parsed)
	if err != nil {
		return "", "", fmt.Errorf("guard: geoip lookup failed: %w", err)
	}
	return englishName(record.Country.Names), englishName(record.City.Names), nil
}

// Locate fills v's Country and City. Private addresses and lookup failures
// leave v unchanged.
func (g *GeoIP) Locate(v *Visitor) {
	if g == nil || isPrivate(v.IP) {
		return
	}
	country, city, err := g.Lookup(v.IP)
	if err != nil {
		return
	}
	v.Country, v.City = country, city
}

// Close releases the database.
func (g *GeoIP) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

func englishName(names map[string]string) string {
	if name, ok := names["en"]; ok {
		return name
	}
	for _, name := range names {
		return name
	}
	return ""
}
