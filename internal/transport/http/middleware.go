package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transportadoras-server-go/internal/domain/session"
	"transportadoras-server-go/internal/platform/config"
	"transportadoras-server-go/internal/platform/logging"
)

const sessionContextKey = "session"

// SessionFromContext returns the identity the auth middleware attached, if
// any.
func SessionFromContext(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// SessionMiddleware enforces the session-token gate on the API group. HEAD
// probes pass through untouched so clients can check reachability without
// credentials. The token comes from the X-Session-Token header, with a
// sessionToken query parameter as fallback.
func SessionMiddleware(verifier session.Verifier, policy string, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		token := c.GetHeader("X-Session-Token")
		if token == "" {
			token = c.Query("sessionToken")
		}
		if token == "" {
			logger.InfoTag("sessão", "request without token: %s %s", c.Request.Method, c.Request.URL.Path)
			RespondAuthError(c, "Não autenticado")
			return
		}

		sess, err := verifier.Verify(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(sessionContextKey, sess)
			c.Next()
		case errors.Is(err, session.ErrInvalid):
			logger.InfoTag("sessão", "invalid token on %s %s", c.Request.Method, c.Request.URL.Path)
			RespondAuthError(c, "Sessão inválida")
		case errors.Is(err, session.ErrUnreachable):
			if policy == config.PolicyOpen {
				logger.WarnTag("sessão", "portal offline - allowing request in degraded mode")
				c.Set(sessionContextKey, &session.Session{Offline: true})
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorBody{
				Error: "Serviço de autenticação indisponível",
			})
		default:
			logger.ErrorTag("sessão", "verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{
				Error: "Erro ao verificar autenticação",
			})
		}
	}
}
