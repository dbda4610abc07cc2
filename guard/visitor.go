package guard

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Visitor describes who is asking for a page. Country and City are only set
// when a GeoIP database is configured.
type Visitor struct {
	IP         string `json:"ip"`
	UserAgent  string `json:"user_agent"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"device_type"` // mobile, desktop, tablet, bot
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
}

// LogValue groups the visitor fields under one log attribute.
func (v Visitor) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("ip", v.IP),
		slog.String("browser", v.Browser),
		slog.String("os", v.OS),
		slog.String("device", v.DeviceType),
	}
	if v.Country != "" {
		attrs = append(attrs, slog.String("country", v.Country))
	}
	if v.City != "" {
		attrs = append(attrs, slog.String("city", v.City))
	}
	return slog.GroupValue(attrs...)
}

// Inspect extracts the visitor from a request.
func Inspect(r *http.Request) Visitor {
	ua := r.UserAgent()
	parsed := useragent.New(ua)

	browser, version := parsed.Browser()
	if version != "" {
		browser += " " + version
	}

	info := parsed.OSInfo()
	os := info.Name
	if info.Version != "" {
		os += " " + info.Version
	}

	device := "desktop"
	switch {
	case parsed.Bot():
		device = "bot"
	case parsed.Mobile():
		device = "mobile"
	case isTablet(ua):
		device = "tablet"
	}

	return Visitor{
		IP:         clientIP(r),
		UserAgent:  ua,
		Browser:    browser,
		OS:         os,
		DeviceType: device,
	}
}

// clientIP prefers proxy headers, first hop first, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); validIP(ip) {
			return ip
		}
	}
	for _, h := range []string{"X-Real-IP", "CF-Connecting-IP"} {
		if ip := strings.TrimSpace(r.Header.Get(h)); validIP(ip) {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func validIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

func isTablet(ua string) bool {
	ua = strings.ToLower(ua)
	for _, keyword := range []string{"ipad", "tablet", "playbook", "silk"} {
		if strings.Contains(ua, keyword) {
			return true
		}
	}
	return false
}

// isPrivate reports loopback and private-range addresses, which have no
// GeoIP record.
func isPrivate(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate())
}
