package i18n

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranslations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	en := []byte(`[E1101]
other = "Tenant ID is required"

[E3101]
other = "Subscription expired {{.daysRemaining}} days left"
`)
	hi := []byte(`[E1101]
other = "टेनेंट आईडी आवश्यक है"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "active.en.toml"), en, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "active.hi.toml"), hi, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("skip"), 0o644))
	return dir
}

func TestLoadAndTranslate(t *testing.T) {
	tr, err := Load(writeTranslations(t))
	require.NoError(t, err)

	assert.Equal(t, "Tenant ID is required", tr.Translate("E1101", "en", "fallback", nil))
	assert.Equal(t, "टेनेंट आईडी आवश्यक है", tr.Translate("E1101", "hi", "fallback", nil))
	// hi has no E3101, falls back to the default language bundle
	assert.Equal(t, "Subscription expired 0 days left", tr.Translate("E3101", "hi", "fallback", map[string]any{"daysRemaining": 0}))
	assert.Equal(t, "fallback", tr.Translate("E9999", "en", "fallback", nil))
}

func TestLoad_MissingDir(t *testing.T) {
	tr, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, "dflt", tr.Translate("E1101", "en", "dflt", nil))
}

func TestTranslate_NilReceiver(t *testing.T) {
	var tr *I18n
	assert.Equal(t, "dflt", tr.Translate("E1101", "en", "dflt", nil))
}

func TestLanguageFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "en", LanguageFromRequest(r))

	r.Header.Set("Accept-Language", "hi-IN,hi;q=0.9,en;q=0.8")
	assert.Equal(t, "hi", LanguageFromRequest(r))

	r.Header.Set("X-Lang", "EN-us")
	assert.Equal(t, "en", LanguageFromRequest(r))

	r.Header.Set("X-Lang", "fr")
	assert.Equal(t, "en", LanguageFromRequest(r))
}
