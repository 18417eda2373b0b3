package handler

import (
	"net/http"

	"mailchimp-auth/internal/auth/state"

	"github.com/gin-gonic/gin"
)

// The server-side authorization request is keyed by the state value
// alone, which any browser could present. This cookie binds the attempt
// to the browser that started it: the callback must carry the same
// state in both the query and the cookie, or validation fails.
const stateCookieName = "__oauth_state"

func setStateCookie(c *gin.Context, stateValue string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    stateValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(state.TTL.Seconds()),
	})
}

func matchStateCookie(c *gin.Context, stateValue string) bool {
	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	return cookie.Value == stateValue
}

func clearStateCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
