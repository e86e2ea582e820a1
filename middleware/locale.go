package middleware

import (
	"velora/i18n"

	"github.com/gin-gonic/gin"
)

// LocaleMiddleware negotiates the response locale from Accept-Language and
// stores it on the context for handlers to localize error messages with.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("locale", i18n.Negotiate(c.GetHeader("Accept-Language")))
		c.Next()
	}
}
