package cnst

const (
	LangEN      = "en"
	LangHI      = "hi"
	LangDefault = LangEN

	// XLang is the header used to pick the response language
	XLang = "X-Lang"
)
