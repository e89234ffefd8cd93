package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingHeader      = errors.New("missing OAuth authorization header")
	ErrMalformedHeader    = errors.New("malformed OAuth authorization header")
	ErrUnknownConsumerKey = errors.New("unknown consumer key")
	ErrUnsupportedMethod  = errors.New("unsupported signature method")
	ErrStaleTimestamp     = errors.New("timestamp outside accepted window")
	ErrNonceReplayed      = errors.New("nonce already used")
	ErrInvalidSignature   = errors.New("signature mismatch")
)

// Verifier checks inbound requests against the OAuth 1.0a signature
// Eloqua attaches to every AppCloud call.
type Verifier struct {
	consumerKey    string
	consumerSecret string
	window         time.Duration
	nonces         NonceStore

	now func() time.Time
}

func NewVerifier(consumerKey, consumerSecret string, window time.Duration, nonces NonceStore) *Verifier {
	return &Verifier{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		window:         window,
		nonces:         nonces,
		now:            time.Now,
	}
}

// Verify recomputes the request signature and rejects the request on
// signature mismatch, stale timestamp, or replayed nonce.
func (v *Verifier) Verify(ctx context.Context, r *http.Request) error {
	oauthParams, err := parseAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return err
	}

	if oauthParams["oauth_consumer_key"] != v.consumerKey {
		return ErrUnknownConsumerKey
	}
	if oauthParams["oauth_signature_method"] != signatureMethodHMACSHA1 {
		return ErrUnsupportedMethod
	}

	if err := v.checkTimestamp(oauthParams["oauth_timestamp"]); err != nil {
		return err
	}

	signature := oauthParams["oauth_signature"]
	if signature == "" {
		return ErrMalformedHeader
	}

	params := queryParams(r.URL)
	for key, value := range oauthParams {
		if key == "oauth_signature" || key == "realm" {
			continue
		}
		params = append(params, param{key: key, value: value})
	}
	if isFormEncoded(r) {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		for key, values := range r.PostForm {
			for _, value := range values {
				params = append(params, param{key: key, value: value})
			}
		}
	}

	base := signatureBase(r.Method, requestURL(r), params)
	expected := sign(base, v.consumerSecret, "")
	if !signaturesEqual(expected, signature) {
		return ErrInvalidSignature
	}

	// Consume the nonce only after the signature checks out so
	// unauthenticated traffic cannot poison the store.
	if err := v.nonces.Remember(ctx, oauthParams["oauth_nonce"], v.window); err != nil {
		return err
	}
	return nil
}

func (v *Verifier) checkTimestamp(raw string) error {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ErrMalformedHeader
	}
	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.window || age < -v.window {
		return ErrStaleTimestamp
	}
	return nil
}

// parseAuthorizationHeader splits an `OAuth k1="v1", k2="v2"` header
// into its decoded parameters.
func parseAuthorizationHeader(header string) (map[string]string, error) {
	if header == "" {
		return nil, ErrMissingHeader
	}
	scheme, rest, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "OAuth") {
		return nil, ErrMissingHeader
	}

	params := map[string]string{}
	for _, part := range strings.Split(rest, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, ErrMalformedHeader
		}
		value = strings.Trim(value, `"`)
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return nil, ErrMalformedHeader
		}
		params[key] = decoded
	}
	return params, nil
}

// requestURL reconstructs the externally visible URL of the request,
// honoring the X-Forwarded-Proto header set by TLS-terminating
// proxies.
func requestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	return &u
}

func isFormEncoded(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
}
