package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

const contextUser = "current_user"

// requireAuth verifies the bearer token, loads the account it names,
// and stores it on the request context. Deactivated accounts are
// rejected even while their tokens are still valid.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, status, message := s.authenticate(c, token)
		if user == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(contextUser, user)
		c.Next()
	}
}

// authenticate resolves a token to an active account. On failure the
// returned user is nil and status/message describe the rejection.
func (s *Server) authenticate(c *gin.Context, token string) (*domain.User, int, string) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid token"
	}

	user, err := s.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, http.StatusUnauthorized, "invalid token"
		}
		s.logger.Error("auth: user lookup failed: %v", err)
		return nil, http.StatusInternalServerError, "internal error"
	}
	if !user.IsActive {
		return nil, http.StatusForbidden, "account is disabled"
	}
	return user, 0, ""
}

func currentUser(c *gin.Context) *domain.User {
	user, _ := c.MustGet(contextUser).(*domain.User)
	return user
}

func currentUserID(c *gin.Context) string {
	return currentUser(c).ID
}
