// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/atelier-backend/internal/i18n"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get language from header
		lang := c.GetHeader("Accept-Language")

		// Parse language preference
		if lang != "" {
			// Handle cases like "pt-BR,pt;q=0.9,en;q=0.8"
			langs := strings.Split(lang, ",")
			firstLang := strings.TrimSpace(strings.Split(langs[0], ";")[0])
			switch firstLang {
			case "pt", "pt-BR", "pt_BR", "pt-PT":
				lang = i18n.LangPortuguese
			case "en", "en-US", "en-GB":
				lang = i18n.LangEnglish
			default:
				lang = i18n.DefaultLang()
			}
		} else {
			lang = i18n.DefaultLang()
		}

		// Set language in context
		c.Set("lang", lang)
		c.Next()
	}
}
