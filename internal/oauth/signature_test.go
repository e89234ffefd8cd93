package oauth_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/appcloud-project/decision-service/internal/oauth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	consumerKey    = "test-consumer-key"
	consumerSecret = "test-consumer-secret"
)

var _ = Describe("Signature verification", func() {
	var (
		signer   *oauth.Signer
		verifier *oauth.Verifier
		nonces   *oauth.MemoryNonceStore
		ctx      context.Context
	)

	BeforeEach(func() {
		signer = oauth.NewSigner(consumerKey, consumerSecret)
		nonces = oauth.NewMemoryNonceStore()
		verifier = oauth.NewVerifier(consumerKey, consumerSecret, 5*time.Minute, nonces)
		ctx = context.Background()
	})

	AfterEach(func() {
		nonces.Close()
	})

	It("accepts a request it signed itself", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/notify?instanceId=abc123&executionId=44"
		header, err := signer.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", rawURL, strings.NewReader(`{"items":[]}`))
		req.Header.Set("Authorization", header)

		Expect(verifier.Verify(ctx, req)).To(Succeed())
	})

	It("accepts query parameters that need percent encoding", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/create?instanceId=abc&assetName=" +
			url.QueryEscape("Summer Campaign & Friends")
		header, err := signer.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", rawURL, nil)
		req.Header.Set("Authorization", header)

		Expect(verifier.Verify(ctx, req)).To(Succeed())
	})

	It("rejects a request without an authorization header", func() {
		req := httptest.NewRequest("POST", "https://app.example.com/eloqua/lifecycle/notify", nil)

		Expect(verifier.Verify(ctx, req)).To(Equal(oauth.ErrMissingHeader))
	})

	It("rejects a tampered query string", func() {
		signedURL := "https://app.example.com/eloqua/lifecycle/delete?instanceId=abc123"
		header, err := signer.AuthorizationHeader("DELETE", signedURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("DELETE", signedURL+"&extra=1", nil)
		req.Header.Set("Authorization", header)

		Expect(verifier.Verify(ctx, req)).To(Equal(oauth.ErrInvalidSignature))
	})

	It("rejects a signature from a different secret", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/notify?instanceId=abc123"
		forger := oauth.NewSigner(consumerKey, "wrong-secret")
		header, err := forger.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", rawURL, nil)
		req.Header.Set("Authorization", header)

		Expect(verifier.Verify(ctx, req)).To(Equal(oauth.ErrInvalidSignature))
	})

	It("rejects an unknown consumer key", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/notify?instanceId=abc123"
		stranger := oauth.NewSigner("someone-else", consumerSecret)
		header, err := stranger.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", rawURL, nil)
		req.Header.Set("Authorization", header)

		Expect(verifier.Verify(ctx, req)).To(Equal(oauth.ErrUnknownConsumerKey))
	})

	It("rejects a stale timestamp", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/notify?instanceId=abc123"
		oauth.SetSignerClock(signer, func() time.Time { return time.Now().Add(-time.Hour) })
		header, err := signer.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", rawURL, nil)
		req.Header.Set("Authorization", header)

		Expect(verifier.Verify(ctx, req)).To(Equal(oauth.ErrStaleTimestamp))
	})

	It("rejects a replayed nonce", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/notify?instanceId=abc123"
		header, err := signer.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest("POST", rawURL, nil)
		req.Header.Set("Authorization", header)
		Expect(verifier.Verify(ctx, req)).To(Succeed())

		replay := httptest.NewRequest("POST", rawURL, nil)
		replay.Header.Set("Authorization", header)
		Expect(verifier.Verify(ctx, replay)).To(Equal(oauth.ErrNonceReplayed))
	})

	It("honors X-Forwarded-Proto when rebuilding the signed URL", func() {
		rawURL := "https://app.example.com/eloqua/lifecycle/notify?instanceId=abc123"
		header, err := signer.AuthorizationHeader("POST", rawURL)
		Expect(err).NotTo(HaveOccurred())

		// The proxy terminates TLS, so the server sees plain HTTP.
		req := httptest.NewRequest("POST", "http://app.example.com/eloqua/lifecycle/notify?instanceId=abc123", nil)
		req.Header.Set("Authorization", header)
		req.Header.Set("X-Forwarded-Proto", "https")

		Expect(verifier.Verify(ctx, req)).To(Succeed())
	})
})
