// Package oauth implements the OAuth 1.0a (RFC 5849) signature scheme
// used by Eloqua AppCloud: HMAC-SHA1 two-legged signing with the app's
// consumer key and secret and an empty token secret.
package oauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	signatureMethodHMACSHA1 = "HMAC-SHA1"
	oauthVersion            = "1.0"
)

type param struct {
	key   string
	value string
}

// percentEncode applies the RFC 5849 3.6 encoding: unreserved
// characters pass through, everything else becomes uppercase %XX.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// normalizeParams encodes, sorts, and concatenates the request
// parameters into the normalized string of RFC 5849 3.4.1.3.2.
func normalizeParams(params []param) string {
	encoded := make([]param, len(params))
	for i, p := range params {
		encoded[i] = param{key: percentEncode(p.key), value: percentEncode(p.value)}
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].key != encoded[j].key {
			return encoded[i].key < encoded[j].key
		}
		return encoded[i].value < encoded[j].value
	})

	pairs := make([]string, len(encoded))
	for i, p := range encoded {
		pairs[i] = p.key + "=" + p.value
	}
	return strings.Join(pairs, "&")
}

// baseStringURI rebuilds the base string URI of RFC 5849 3.4.1.2:
// lowercase scheme and authority, default ports omitted, no query.
func baseStringURI(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if scheme == "http" {
		host = strings.TrimSuffix(host, ":80")
	}
	if scheme == "https" {
		host = strings.TrimSuffix(host, ":443")
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path
}

func signatureBase(method string, u *url.URL, params []param) string {
	return strings.ToUpper(method) + "&" +
		percentEncode(baseStringURI(u)) + "&" +
		percentEncode(normalizeParams(params))
}

func sign(base, consumerSecret, tokenSecret string) string {
	key := percentEncode(consumerSecret) + "&" + percentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func signaturesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func queryParams(u *url.URL) []param {
	var params []param
	for key, values := range u.Query() {
		for _, value := range values {
			params = append(params, param{key: key, value: value})
		}
	}
	return params
}

// Signer produces Authorization headers for outbound Eloqua API calls.
type Signer struct {
	consumerKey    string
	consumerSecret string

	// overridable for deterministic tests
	now   func() time.Time
	nonce func() string
}

func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		now:            time.Now,
		nonce:          func() string { return uuid.NewString() },
	}
}

// AuthorizationHeader signs the given request line and returns the
// value for the Authorization header. Query parameters of rawURL take
// part in the signature; request bodies are assumed to be JSON and do
// not.
func (s *Signer) AuthorizationHeader(method, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse request URL: %w", err)
	}

	oauthParams := []param{
		{key: "oauth_consumer_key", value: s.consumerKey},
		{key: "oauth_nonce", value: s.nonce()},
		{key: "oauth_signature_method", value: signatureMethodHMACSHA1},
		{key: "oauth_timestamp", value: fmt.Sprintf("%d", s.now().Unix())},
		{key: "oauth_version", value: oauthVersion},
	}

	params := append(queryParams(u), oauthParams...)
	signature := sign(signatureBase(method, u, params), s.consumerSecret, "")

	header := make([]string, 0, len(oauthParams)+1)
	for _, p := range oauthParams {
		header = append(header, fmt.Sprintf("%s=%q", p.key, percentEncode(p.value)))
	}
	header = append(header, fmt.Sprintf("oauth_signature=%q", percentEncode(signature)))
	return "OAuth " + strings.Join(header, ", "), nil
}
