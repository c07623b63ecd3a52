// Package flash carries one-shot messages across a redirect in a signed cookie.
package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/gin-gonic/gin"
)

const cookieName = "_flash"

// Signer writes and reads flash cookies. The cookie value is
// base64url(message) + "." + base64url(hmac-sha256(message)), so a client
// cannot forge or alter a message without the process secret.
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer keyed with the process-wide secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Set attaches msg to the outgoing response. The next Take consumes it.
func (s *Signer) Set(c *gin.Context, msg string) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(msg))
	c.SetCookie(cookieName, payload+"."+s.tag(payload), 300, "/", "", false, true)
}

// Take returns the pending message and clears the cookie. ok is false when the
// cookie is absent, malformed, or fails signature verification.
func (s *Signer) Take(c *gin.Context) (msg string, ok bool) {
	raw, err := c.Cookie(cookieName)
	if err != nil || raw == "" {
		return "", false
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)

	payload, tag, found := strings.Cut(raw, ".")
	if !found || !hmac.Equal([]byte(tag), []byte(s.tag(payload))) {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (s *Signer) tag(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
