package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"example.com/backstage/services/picking/internal/api/handlers"
	"example.com/backstage/services/picking/internal/domain"
	"example.com/backstage/services/picking/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Identity headers set by the upstream identity provider
const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserRole  = "X-User-Role"
)

// UserRegistrar creates the user record on first sight
type UserRegistrar interface {
	EnsureUser(ctx context.Context, id domain.Identity) error
}

// RequestID tags each request with an id, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(handlers.RequestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// Logger logs every request once it has been served
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		event := log.Info()
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			event, msg = log.Error(), "Server error"
		case statusCode >= 400:
			event, msg = log.Warn(), "Client error"
		}

		event.
			Int("status", statusCode).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("request_id", c.GetString(handlers.RequestIDKey)).
			Msg(msg)
	}
}

// CORS adds CORS headers for the allowed origins
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := ""
		if allowAll {
			allowedOrigin = "*"
		} else {
			for _, allowed := range allowedOrigins {
				if allowed == origin {
					allowedOrigin = origin
					break
				}
			}
		}

		if allowedOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowedOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", strings.Join([]string{
				"Content-Type", "Authorization", HeaderRequestID, HeaderUserID, HeaderUserName, HeaderUserRole,
			}, ", "))
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Metrics records request latency and the error rate per route
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.RecordTimer(metrics.TimerHTTPRequest, time.Since(start))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		var err error
		if c.Writer.Status() >= 500 {
			err = &handlers.Error{Message: strconv.Itoa(c.Writer.Status()), StatusCode: c.Writer.Status()}
		}
		m.RecordResult("http "+c.Request.Method+" "+route, err)
	}
}

// RequireIdentity reads the acting user from the identity headers and
// registers it the first time this process sees it
func RequireIdentity(users UserRegistrar) gin.HandlerFunc {
	var seen sync.Map

	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			handlers.RespondError(c, handlers.ErrUnauthorized)
			return
		}

		headerRole := domain.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole))))
		id := domain.Identity{
			UID:  uid,
			Name: c.GetHeader(HeaderUserName),
			Role: domain.RoleEstoquista,
		}
		if headerRole == domain.RoleAdmin {
			id.Role = domain.RoleAdmin
		}

		if _, ok := seen.Load(uid); !ok && users != nil {
			// without a role header the stored role is kept
			registration := id
			if headerRole == "" {
				registration.Role = ""
			}
			if err := users.EnsureUser(c.Request.Context(), registration); err != nil {
				handlers.RespondError(c, err)
				return
			}
			seen.Store(uid, struct{}{})
		}

		c.Set(handlers.IdentityKey, id)
		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !handlers.Identity(c).IsAdmin() {
			handlers.RespondError(c, handlers.ErrForbidden)
			return
		}
		c.Next()
	}
}
