// Package cookie carries the session token across the HTTP boundary in an
// HttpOnly cookie.
package cookie

import (
	"net/http"
	"time"
)

const (
	// Name is the reserved cookie name holding the session token.
	Name = "sessionToken"
	// DefaultExpiryDays matches the default session lifetime.
	DefaultExpiryDays = 7
)

// ExtractToken returns the session token sent with r, or "" and false when
// the request carries no non-empty session cookie.
func ExtractToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Attach adds a Set-Cookie header for token, valid for expiryDays days.
// Non-positive expiryDays means DefaultExpiryDays. Other headers already set
// on w are left alone.
func Attach(w http.ResponseWriter, token string, expiryDays int) {
	if expiryDays <= 0 {
		expiryDays = DefaultExpiryDays
	}
	AttachFor(w, token, time.Duration(expiryDays)*24*time.Hour)
}

// AttachFor is Attach with the lifetime given as a duration, rounded down to
// whole seconds.
func AttachFor(w http.ResponseWriter, token string, lifetime time.Duration) {
	http.SetCookie(w, sessionCookie(token, int(lifetime/time.Second)))
}

// Clear adds a Set-Cookie header that makes the browser drop the session
// cookie immediately.
func Clear(w http.ResponseWriter) {
	// Negative MaxAge is written as Max-Age=0.
	http.SetCookie(w, sessionCookie("", -1))
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
