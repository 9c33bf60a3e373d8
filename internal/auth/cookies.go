package auth

import (
	"net/http"
	"time"

	"github.com/pixele/identity/internal/models"
)

// Cookie names for the session trio. pixele_session carries the access
// token, pixele_id the id token, pixele_refresh the refresh token.
const (
	SessionCookieName = "pixele_session"
	IDCookieName      = "pixele_id"
	RefreshCookieName = "pixele_refresh"
)

// refreshCookieMaxAge matches the pool's refresh token validity (30 days).
const refreshCookieMaxAge = 30 * 24 * 60 * 60

// CookieConfig holds cookie scoping settings.
type CookieConfig struct {
	Domain string // empty = current host only
	Secure bool
}

// SetSessionCookies writes the three session cookies from a token set.
// All are httpOnly, SameSite=Strict.
func SetSessionCookies(w http.ResponseWriter, tokens *models.TokenSet, config CookieConfig) {
	maxAge := int(tokens.ExpiresIn)

	setCookie(w, SessionCookieName, tokens.AccessToken, maxAge, config)
	setCookie(w, IDCookieName, tokens.IDToken, maxAge, config)
	setCookie(w, RefreshCookieName, tokens.RefreshToken, refreshCookieMaxAge, config)
}

// ClearSessionCookies expires all three session cookies. Used by logout on
// every path, including provider failures.
func ClearSessionCookies(w http.ResponseWriter, config CookieConfig) {
	clearCookie(w, SessionCookieName, config)
	clearCookie(w, IDCookieName, config)
	clearCookie(w, RefreshCookieName, config)
}

// GetSessionToken retrieves the access token from the session cookie.
func GetSessionToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearCookie(w http.ResponseWriter, name string, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
