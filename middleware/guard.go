package middleware

import (
	"context"
	"net"
	"net/http"

	authgate "github.com/athenaeum/authgate"
	"github.com/athenaeum/authgate/label"
)

// SessionCookieName is the cookie guards read the session handle from.
const SessionCookieName = "authgate_session"

type userInfoContextKey struct{}

// UserFromContext returns the identity a guard resolved for this request.
func UserFromContext(ctx context.Context) (authgate.UserInfo, bool) {
	info, ok := ctx.Value(userInfoContextKey{}).(authgate.UserInfo)
	return info, ok
}

// Guard rejects requests that do not carry an authenticated session and
// injects the resolved identity into the request context for the wrapped
// handler.
func Guard(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := requestContext(r)

			info := engine.WhoAmI(ctx, sessionHandle(r))
			if !info.Authenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, userInfoContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLabel is [Guard] plus an entitlement check: the session's user must
// hold the given label or the request is rejected with 403.
func RequireLabel(engine *authgate.Engine, required label.Label) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := UserFromContext(r.Context())
			if !ok || !hasLabel(info.Labels, required) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// SessionHandle extracts the session handle a request presented, or ""
// when none. Exposed so login handlers can pass it as the prior handle.
func SessionHandle(r *http.Request) string {
	return sessionHandle(r)
}

func sessionHandle(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func hasLabel(labels []label.Label, want label.Label) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

func requestContext(r *http.Request) context.Context {
	ctx := r.Context()

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ctx = authgate.WithClientIP(ctx, host)
	ctx = authgate.WithUserAgent(ctx, r.UserAgent())

	return ctx
}
