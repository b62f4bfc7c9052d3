package studio

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"masterpiece/internal/domain"
	"masterpiece/internal/gate"
)

var supportedLocales = []language.Tag{language.English, language.Indonesian}

var localeMatcher = language.NewMatcher(supportedLocales)

var indonesian = map[string]string{
	domain.LoadingMessages[0]:   "Mempelajari sapuan kuas...",
	domain.LoadingMessages[1]:   "Membayangkan gerakannya...",
	domain.LoadingMessages[2]:   "Membangunkan sosok dalam lukisan...",
	domain.LoadingMessages[3]:   "Merender bingkai...",
	domain.LoadingMessages[4]:   "Menerapkan filter artistik...",
	domain.LoadingMessages[5]:   "Hampir selesai, memoles animasi...",
	domain.MsgCredentialMissing: "API Key belum dipilih. Silakan pilih API Key untuk melanjutkan.",
	domain.MsgCredentialInvalid: "Akses API Key hilang atau tidak valid. Silakan hubungkan ulang.",
	domain.MsgNoResultProduced:  "Pembuatan video gagal: tidak ada URI yang dikembalikan.",
	domain.MsgInProgress:        "Video sedang dibuat. Tunggu hingga selesai.",
	domain.MsgUnexpected:        "Terjadi kesalahan tak terduga saat membuat video.",
	domain.MsgNoImage:           "Silakan unggah file gambar.",

	gate.ErrEnvironmentUnsupported.Message: "Pemilihan kredensial tidak tersedia di lingkungan ini. Atur API key pada host.",
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range indonesian {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Indonesian, key, text)
	}
	return b
}

// matchLocale maps a free-form locale ("id-ID", "en_US", "") to a supported tag.
func matchLocale(locale string) language.Tag {
	_, idx := language.MatchStrings(localeMatcher, locale)
	return supportedLocales[idx]
}

// Localize translates known messages. Anything else, such as a raw remote
// error, is returned unchanged.
func Localize(locale, msg string) string {
	if _, ok := indonesian[msg]; !ok {
		return msg
	}
	return message.NewPrinter(matchLocale(locale), message.Catalog(messages)).Sprintf(msg)
}
