package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pablo-lozano-martin/genesis-sub005/domain"
)

func (s *Server) handleGetMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// updateMeRequest carries the profile fields a user may change. Absent
// fields are left untouched; password changes go through a separate
// flow.
type updateMeRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}

func (s *Server) handleUpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email cannot be empty"})
			return
		}
		existing, err := s.users.GetByEmail(ctx, email)
		if err == nil && existing.ID != user.ID {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("update profile: email lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
			return
		}
		user.Email = email
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username cannot be empty"})
			return
		}
		existing, err := s.users.GetByUsername(ctx, username)
		if err == nil && existing.ID != user.ID {
			c.JSON(http.StatusConflict, gin.H{"error": "username already in use"})
			return
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("update profile: username lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
			return
		}
		user.Username = username
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("update profile: save failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
		return
	}

	c.JSON(http.StatusOK, user)
}
