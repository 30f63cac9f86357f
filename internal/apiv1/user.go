package apiv1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
)

func (s *Server) getCurrentUser(c *gin.Context) {
	claims := getClaims(c)

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		s.logger.Error("get user", "error", err)
		internalError(c, "failed to load user")
		return
	}
	if user == nil {
		notFound(c, "user not found")
		return
	}
	success(c, user)
}

type updateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
}

func (s *Server) updateCurrentUser(c *gin.Context) {
	claims := getClaims(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := s.users.UpdateProfile(claims.UserID, req.FirstName, req.LastName, strings.ToLower(req.Email))
	if err != nil {
		if store.IsDuplicateEmail(err) {
			badRequest(c, "email already registered")
			return
		}
		s.logger.Error("update user", "error", err)
		internalError(c, "failed to update user")
		return
	}
	success(c, user)
}

func (s *Server) getUsers(c *gin.Context) {
	claims := getClaims(c)

	users, err := s.users.ListByHousehold(claims.HouseholdID)
	if err != nil {
		s.logger.Error("list users", "error", err)
		internalError(c, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	success(c, users)
}
