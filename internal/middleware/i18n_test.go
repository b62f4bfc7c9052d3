package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		xLocale  string
		accept   string
		country  string
		fallback string
		want     string
	}{
		{name: "x-locale overrides everything", xLocale: "ID", accept: "en-US", country: "US", want: "id"},
		{name: "underscore form", xLocale: "id_ID", want: "id"},
		{name: "accept-language", accept: "en-US,en;q=0.9", country: "ID", want: "en"},
		{name: "accept-language honours weights", accept: "en;q=0.3,id;q=0.9", want: "id"},
		{name: "unsupported accept-language falls through to country", accept: "fr-FR", country: "ID", want: "id"},
		{name: "country of an english speaker", country: "US", want: "en"},
		{name: "unsupported country uses fallback", country: "FR", fallback: "id", want: "id"},
		{name: "configured fallback", fallback: "id", want: "id"},
		{name: "empty fallback", want: "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.xLocale != "" {
				req.Header.Set("X-Locale", tc.xLocale)
			}
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			got := detectLocale(req, tc.fallback, tc.country)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		lookup CountryLookup
		want   string
	}{
		{
			name:   "cdn header first",
			header: map[string]string{"CF-IPCountry": "id", "X-Country-Code": "us"},
			want:   "ID",
		},
		{
			name:   "unknown cdn country ignored",
			header: map[string]string{"CF-IPCountry": "XX", "X-Locale": "en-AU"},
			want:   "AU",
		},
		{
			name:   "explicit accept-language region",
			header: map[string]string{"Accept-Language": "en-GB,en;q=0.9"},
			want:   "GB",
		},
		{
			name:   "bare language does not guess a region",
			header: map[string]string{"Accept-Language": "id;q=0.8"},
			want:   "",
		},
		{
			name: "geoip lookup on the client address",
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					return "", errors.New("unexpected ip " + ip)
				}
				return "my", nil
			},
			want: "MY",
		},
		{
			name:   "lookup error",
			lookup: func(string) (string, error) { return "", errors.New("boom") },
			want:   "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			if got := ResolveCountry(req, tc.lookup); got != tc.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":      "en",
		"ID":    "id",
		"id_ID": "id",
		"en-GB": "en",
		"fr-FR": "en",
	}
	for in, want := range cases {
		if got := normalizeLocale(in); got != want {
			t.Fatalf("normalizeLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want en", got)
	}
	ctx = WithLocale(ctx, "id-ID")
	if got := LocaleFromContext(ctx); got != "id" {
		t.Fatalf("LocaleFromContext() = %q, want id", got)
	}
	if got := CountryFromContext(ctx); got != "" {
		t.Fatalf("CountryFromContext() = %q, want empty", got)
	}
}

func TestI18NMiddleware(t *testing.T) {
	var gotLocale, gotCountry string
	h := I18N("en", func(ip string) (string, error) { return "id", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotLocale != "id" || gotCountry != "ID" {
		t.Fatalf("locale=%q country=%q, want id/ID", gotLocale, gotCountry)
	}
}

func TestLookupFromResolverNil(t *testing.T) {
	if LookupFromResolver(nil) != nil {
		t.Fatal("nil resolver must give nil lookup")
	}
}
