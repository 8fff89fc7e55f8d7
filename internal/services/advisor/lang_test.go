package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLangTag(t *testing.T) {
	t.Run("malayalam tag", func(t *testing.T) {
		text, lang := SplitLangTag("നെല്ല് നടാൻ ജൂൺ നല്ലതാണ്.\n[lang:ml]")
		assert.Equal(t, "ml", lang)
		assert.Equal(t, "നെല്ല് നടാൻ ജൂൺ നല്ലതാണ്.", text)
	})

	t.Run("english tag", func(t *testing.T) {
		text, lang := SplitLangTag("June is a good month for planting paddy.\n[lang:en]")
		assert.Equal(t, "en", lang)
		assert.Equal(t, "June is a good month for planting paddy.", text)
	})

	t.Run("missing tag falls back to detection", func(t *testing.T) {
		text, lang := SplitLangTag("Use neem oil for aphids.")
		assert.Equal(t, "en", lang)
		assert.Equal(t, "Use neem oil for aphids.", text)

		_, lang = SplitLangTag("വേപ്പെണ്ണ ഉപയോഗിക്കുക")
		assert.Equal(t, "ml", lang)
	})

	t.Run("tag inline with last line", func(t *testing.T) {
		text, lang := SplitLangTag("Short answer. [lang:en]")
		assert.Equal(t, "en", lang)
		assert.Equal(t, "Short answer.", text)
	})
}

func TestDetectLang(t *testing.T) {
	assert.Equal(t, "en", DetectLang("when should I plant rice?"))
	assert.Equal(t, "ml", DetectLang("എപ്പോൾ നടണം?"))
	assert.Equal(t, "ml", DetectLang("mixed script നെല്ല് question"))
	assert.Equal(t, "en", DetectLang(""))
}
