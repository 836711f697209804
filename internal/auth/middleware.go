package auth

import (
	"net/http"
	"strings"
)

// Policy determines which requests need which role. Token issuance is
// external to the panel; the middleware only validates bearer tokens.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds the panel policy: health, metrics and the
// dashboard read surface are open, mutating routes need an operator.
func NewDefaultPolicy() Policy {
	return Policy{
		ExemptPaths: map[string]struct{}{
			"/healthz": {},
			"/metrics": {},
		},
	}
}

// IsExempt returns true when a request skips auth entirely.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	// Reads stay open for the dashboard; only mutations are guarded.
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

// RequiredRole resolves the required role for the request.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	if r.Method == http.MethodPost {
		return RoleOperator, true
	}
	return RoleViewer, true
}

// Middleware validates JWTs and enforces the policy. A nil middleware (no
// secret configured) passes every request through.
type Middleware struct {
	Secret []byte
	Policy Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// Wrap applies auth to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil || len(m.Secret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearer(r)
		claims, err := ParseJWT(token, m.Secret)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
