package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kahera/kahera/internal/metrics"
	"go.uber.org/zap"
)

const (
	// HeaderTimezone carries an IANA zone name; date filters and
	// dashboard windows are computed in that zone.
	HeaderTimezone = "X-Timezone"

	contextUserIDKey   = "user_id"
	contextUserRoleKey = "user_role"
	contextLocationKey = "location"
)

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
		} else {
			log.Info("request", fields...)
		}
	}
}

func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		user, err := s.authsvc.CurrentUser(c.Request.Context(), sess.UserID)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextUserIDKey, user.ID.Int64())
		c.Set(contextUserRoleKey, user.Role)
		c.Next()
	}
}

func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(contextUserRoleKey)
		got, _ := role.(string)
		for _, want := range roles {
			if got == want {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// Timezone resolves the request's display zone. An unknown zone name
// falls back to the configured default rather than failing the call.
func (s *Server) Timezone() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader(HeaderTimezone))
		if name == "" {
			name = s.cfg.DefaultTimezone
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			loc, err = time.LoadLocation(s.cfg.DefaultTimezone)
			if err != nil {
				loc = time.UTC
			}
		}
		c.Set(contextLocationKey, loc)
		c.Next()
	}
}

func (s *Server) userID(c *gin.Context) int64 {
	v, _ := c.Get(contextUserIDKey)
	id, _ := v.(int64)
	return id
}

func (s *Server) userRole(c *gin.Context) string {
	v, _ := c.Get(contextUserRoleKey)
	role, _ := v.(string)
	return role
}

func (s *Server) location(c *gin.Context) *time.Location {
	v, ok := c.Get(contextLocationKey)
	if !ok {
		return time.UTC
	}
	loc, ok := v.(*time.Location)
	if !ok || loc == nil {
		return time.UTC
	}
	return loc
}
