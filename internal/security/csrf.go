package security

import (
	"crypto/sha256"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFFieldName is the hidden form field carrying the masked token.
const CSRFFieldName = "csrf_token"

// CSRFKey derives the 32-byte authentication key gorilla/csrf needs from an
// arbitrary-length secret.
func CSRFKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// CSRFProtect returns middleware that rejects unsafe requests lacking a valid
// token. Requests that did not arrive over TLS are marked plaintext so local
// http:// use skips the strict Referer check. failure may be nil.
func CSRFProtect(secret string, secureCookie bool, failure http.Handler) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secureCookie),
		csrf.FieldName(CSRFFieldName),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	}
	if failure != nil {
		opts = append(opts, csrf.ErrorHandler(failure))
	}
	protect := csrf.Protect(CSRFKey(secret), opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsSecureRequest(r) {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// CSRFFailureReason exposes why gorilla/csrf rejected r, for logging.
func CSRFFailureReason(r *http.Request) error {
	return csrf.FailureReason(r)
}

// CSRFTemplateField returns the hidden input carrying the token for r, or
// nothing when r did not pass through CSRFProtect.
func CSRFTemplateField(r *http.Request) template.HTML {
	return csrf.TemplateField(r)
}
