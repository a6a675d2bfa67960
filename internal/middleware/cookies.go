package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Cookie names for the two credential classes. The access cookie is scoped
// site-wide; the refresh cookie only travels to the refresh endpoint so it
// is absent from every other request.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/v1/auth/refresh"
)

// SetAuthCookies writes both credential cookies. Cookies are httpOnly and
// secure; SameSite is relaxed outside production so local clients on a
// different origin can still authenticate.
func SetAuthCookies(c echo.Context, access, refresh string, accessTTL, refreshTTL time.Duration, prod bool) {
	sameSite := http.SameSiteLaxMode
	if prod {
		sameSite = http.SameSiteNoneMode
	}
	c.SetCookie(&http.Cookie{
		Name:     AccessCookieName,
		Value:    access,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
	})
	if refresh != "" {
		c.SetCookie(&http.Cookie{
			Name:     RefreshCookieName,
			Value:    refresh,
			Path:     RefreshCookiePath,
			MaxAge:   int(refreshTTL.Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: sameSite,
		})
	}
}

// ClearAuthCookies expires both credential cookies on the client.
func ClearAuthCookies(c echo.Context) {
	for _, ck := range []struct{ name, path string }{
		{AccessCookieName, "/"},
		{RefreshCookieName, RefreshCookiePath},
	} {
		c.SetCookie(&http.Cookie{
			Name:     ck.name,
			Value:    "",
			Path:     ck.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
		})
	}
}
