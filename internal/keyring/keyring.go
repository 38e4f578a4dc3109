// Package keyring holds the account credentials of a session and keeps the
// secret out of logs.
package keyring

import (
	"fmt"
	"net/http"
	"strings"
)

// SecretHeader carries the account private key.
const SecretHeader = "x-sideshift-secret"

// Credentials is the immutable secret and affiliate id of one account.
type Credentials struct {
	privateKey  string
	affiliateID string
}

func New(privateKey, affiliateID string) *Credentials {
	return &Credentials{
		privateKey:  strings.TrimSpace(privateKey),
		affiliateID: strings.TrimSpace(affiliateID),
	}
}

// Secret returns the private key verbatim, for the request header only.
func (c *Credentials) Secret() string {
	if c == nil {
		return ""
	}
	return c.privateKey
}

func (c *Credentials) AffiliateID() string {
	if c == nil {
		return ""
	}
	return c.affiliateID
}

func (c *Credentials) HasSecret() bool {
	return c.Secret() != ""
}

func (c *Credentials) HasAffiliate() bool {
	return c.AffiliateID() != ""
}

func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{Secret:%s, AffiliateID:%s}", Mask(c.Secret()), c.AffiliateID())
}

// Mask hides all but the first and last four characters of key.
// Keys of eight characters or fewer are hidden entirely.
func Mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// RedactHeaders returns a copy of headers with the secret masked.
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if strings.EqualFold(k, SecretHeader) {
			v = Mask(v)
		}
		out[k] = v
	}
	return out
}

// RedactHTTPHeader flattens h into a map with the secret masked.
func RedactHTTPHeader(h http.Header) map[string]string {
	flat := make(map[string]string, len(h))
	for k, v := range h {
		flat[k] = strings.Join(v, ",")
	}
	return RedactHeaders(flat)
}
