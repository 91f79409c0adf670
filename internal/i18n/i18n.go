package i18n

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dairyline/distributor/internal/common/cnst"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var supportedLangs = []string{cnst.LangEN, cnst.LangHI}

// I18n manages internationalization and translations
type I18n struct {
	bundle      *goi18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a new I18n instance with the specified default language
func NewI18n(defaultLang language.Tag) *I18n {
	bundle := goi18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &I18n{
		bundle:      bundle,
		defaultLang: defaultLang,
	}
}

// Load builds a translator from every *.toml file in dir. A missing dir yields an
// empty bundle so that callers fall back to default messages.
func Load(dir string) (*I18n, error) {
	t := NewI18n(language.English)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return t, nil
	}
	if err := t.LoadTranslations(dir); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTranslations loads translation files from the specified directory
func (i *I18n) LoadTranslations(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(dir, file.Name())); err != nil {
			return fmt.Errorf("failed to load %s: %w", file.Name(), err)
		}
	}
	return nil
}

// Translate returns a localized string for msgID, or fallback when no translation exists
func (i *I18n) Translate(msgID, lang, fallback string, data map[string]any) string {
	if i == nil {
		return fallback
	}
	localizer := goi18n.NewLocalizer(i.bundle, language.Make(lang).String(), i.defaultLang.String())

	lc := &goi18n.LocalizeConfig{MessageID: msgID}
	if len(data) > 0 {
		lc.TemplateData = data
	}

	msg, err := localizer.Localize(lc)
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}

// LanguageFromRequest extracts the language preference from X-Lang, then Accept-Language
func LanguageFromRequest(r *http.Request) string {
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return normalizeLang(lang)
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			return normalizeLang(tags[0].String())
		}
	}
	return cnst.LangDefault
}

// normalizeLang reduces a tag to a supported base language
func normalizeLang(lang string) string {
	code := strings.ToLower(strings.Split(strings.TrimSpace(lang), "-")[0])
	for _, supported := range supportedLangs {
		if code == supported {
			return code
		}
	}
	return cnst.LangDefault
}
