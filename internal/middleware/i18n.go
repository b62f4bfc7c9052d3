package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"masterpiece/internal/infra/geoip"
)

type requestLocale struct {
	locale  string
	country string
}

type localeKey struct{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// LookupFromResolver adapts a GeoIP resolver. A nil resolver yields a nil lookup.
func LookupFromResolver(r geoip.CountryResolver) CountryLookup {
	if r == nil {
		return nil
	}
	return r.CountryCode
}

// Locales the studio ships messages for. The first one is the fallback.
var supportedLocales = []language.Tag{language.English, language.Indonesian}

var localeMatcher = language.NewMatcher(supportedLocales)

// countryHeaders are set by CDNs and load balancers in front of the API.
var countryHeaders = []string{"CF-IPCountry", "X-Country-Code", "X-Appengine-Country"}

// I18N stores the locale for progress and error messages on the request
// context. An explicit X-Locale wins over Accept-Language, which wins over
// the country of the client.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	fallback := normalizeLocale(defaultLocale)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			loc := requestLocale{locale: detectLocale(r, fallback, country), country: country}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey{}, loc)))
		})
	}
}

func detectLocale(r *http.Request, fallback, country string) string {
	if v, ok := matchSupported(r.Header.Get("X-Locale")); ok {
		return v
	}
	if v, ok := matchSupported(r.Header.Get("Accept-Language")); ok {
		return v
	}
	if region, err := language.ParseRegion(country); err == nil {
		if tag, err := language.Compose(region); err == nil {
			if v, ok := matchTags(tag); ok {
				return v
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

// matchSupported accepts a single tag or a weighted Accept-Language list.
func matchSupported(header string) (string, bool) {
	header = strings.TrimSpace(strings.ReplaceAll(header, "_", "-"))
	if header == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	return matchTags(tags...)
}

func matchTags(tags ...language.Tag) (string, bool) {
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	base, _ := supportedLocales[idx].Base()
	return base.String(), true
}

func normalizeLocale(locale string) string {
	if v, ok := matchSupported(locale); ok {
		return v
	}
	base, _ := supportedLocales[0].Base()
	return base.String()
}

// ClientIP returns the host part of RemoteAddr. chi's RealIP runs first and
// has already applied X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeKey{}).(requestLocale); ok && v.locale != "" {
		return v.locale
	}
	return "en"
}

// CountryFromContext returns the ISO country code resolved for the request.
func CountryFromContext(ctx context.Context) string {
	v, _ := ctx.Value(localeKey{}).(requestLocale)
	return v.country
}

// WithLocale attaches a locale outside the middleware, for handler tests.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, requestLocale{locale: normalizeLocale(locale)})
}

// ResolveCountry returns an upper-case ISO country code or "". Proxy headers
// come first, then an explicit region in the language headers, then GeoIP.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range countryHeaders {
		if val := strings.TrimSpace(r.Header.Get(key)); len(val) == 2 && !strings.EqualFold(val, "XX") {
			return strings.ToUpper(val)
		}
	}
	for _, key := range []string{"X-Locale", "Accept-Language"} {
		if region := explicitRegion(r.Header.Get(key)); region != "" {
			return region
		}
	}
	if lookup == nil {
		return ""
	}
	ip := ClientIP(r)
	if ip == "" {
		return ""
	}
	country, err := lookup(ip)
	if err != nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(country))
}

// explicitRegion returns the region of the preferred tag only when the client
// spelled it out, so "id" does not turn into a guessed "ID".
func explicitRegion(header string) string {
	header = strings.TrimSpace(strings.ReplaceAll(header, "_", "-"))
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	region, conf := tags[0].Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}
