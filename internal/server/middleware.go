package server

import (
	"strings"

	identitydomain "github.com/chikoro/feeledger/internal/identity/domain"
	studentdomain "github.com/chikoro/feeledger/internal/student/domain"
	"github.com/gin-gonic/gin"
)

const contextPrincipalKey = "principal"

// AuthRequired resolves the bearer token and stores the caller's principal
// on the gin context for the handlers downstream.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.identitySvc.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

// RequirePermission gates the route on the caller's role. Record-level
// scoping for parents happens inside the services.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(principal.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// ReminderRateLimit caps reminder sends per authenticated user so a stuck
// client cannot flood guardians.
func (s *Server) ReminderRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !s.reminderLimiter.allow(principal.UserID) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func principalFromContext(c *gin.Context) (identitydomain.Principal, bool) {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return identitydomain.Principal{}, false
	}
	principal, ok := v.(identitydomain.Principal)
	return principal, ok
}

func actorFromContext(c *gin.Context) (studentdomain.Actor, bool) {
	principal, ok := principalFromContext(c)
	if !ok {
		return studentdomain.Actor{}, false
	}
	return studentdomain.Actor{
		UserID: principal.UserID,
		Name:   principal.Name,
		Role:   principal.Role,
	}, true
}
