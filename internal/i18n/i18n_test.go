// internal/i18n/i18n_test.go
package i18n

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadLocale(t *testing.T, lang string) map[string]string {
	t.Helper()
	data, err := localeFS.ReadFile("locales/" + lang + ".json")
	require.NoError(t, err)

	var translations map[string]string
	require.NoError(t, json.Unmarshal(data, &translations))
	return translations
}

func TestLocalesDefineTheSameKeys(t *testing.T) {
	en, fr := loadLocale(t, "en"), loadLocale(t, "fr")

	for key := range en {
		assert.Contains(t, fr, key, "missing in fr")
	}
	for key := range fr {
		assert.Contains(t, en, key, "missing in en")
	}
}

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("fr"))

	assert.Equal(t, "fr", DefaultLang())
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("de"))

	assert.Equal(t, T("fr", KeyContractNotFound), T("de", KeyContractNotFound), "unknown languages fall back to the default")
	assert.Equal(t, "no.such.key", T("en", "no.such.key"))
	assert.Contains(t, T("en", KeyContractsExpired, 4), "4")
}

func TestFormatTime(t *testing.T) {
	require.NoError(t, Initialize("fr"))
	at := time.Date(2026, 3, 9, 18, 30, 0, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, "2026-03-09 17:30 UTC", FormatTime("en", at))
	assert.Equal(t, "09/03/2026 17:30 UTC", FormatTime("fr", at))
}
