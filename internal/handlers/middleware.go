package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/appcloud-project/decision-service/internal/oauth"
	"github.com/sirupsen/logrus"
)

// RequestVerifier authenticates an inbound Eloqua request.
type RequestVerifier interface {
	Verify(ctx context.Context, r *http.Request) error
}

// VerifySignature rejects requests whose OAuth 1.0a signature does not
// check out. A nil verifier disables verification (local development).
func VerifySignature(verifier RequestVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}
			if err := verifier.Verify(r.Context(), r); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				}).Warn("Rejected unsigned or tampered request")
				status := http.StatusUnauthorized
				if errors.Is(err, oauth.ErrMalformedHeader) {
					status = http.StatusBadRequest
				}
				writeError(w, "unauthorized", "OAuth verification failed", err.Error(), status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
