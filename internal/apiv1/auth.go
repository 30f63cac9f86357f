package apiv1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/choreme/choreme/internal/auth"
	"github.com/choreme/choreme/internal/model"
	"github.com/choreme/choreme/internal/store"
)

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type registerRequest struct {
	HouseholdName string `json:"household_name" binding:"required"`
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
}

// register creates a household and its first parent user.
func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	household, err := s.households.Create(req.HouseholdName)
	if err != nil {
		s.logger.Error("create household", "error", err)
		internalError(c, "failed to create household")
		return
	}

	user := s.createUser(c, household.ID, req.FirstName, req.LastName, req.Email, req.Password, model.RoleParent)
	if user == nil {
		return
	}

	s.respondWithToken(c, user)
}

type joinRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
}

// joinHousehold creates a child user in the household matching the
// invite code.
func (s *Server) joinHousehold(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	household, err := s.households.GetByInviteCode(req.InviteCode)
	if err != nil {
		s.logger.Error("get household by invite", "error", err)
		internalError(c, "failed to look up invite code")
		return
	}
	if household == nil {
		notFound(c, "invite code not recognized")
		return
	}

	user := s.createUser(c, household.ID, req.FirstName, req.LastName, req.Email, req.Password, model.RoleChildren)
	if user == nil {
		return
	}

	s.respondWithToken(c, user)
}

// createUser hashes the password and inserts the user, writing the error
// response itself and returning nil on failure.
func (s *Server) createUser(c *gin.Context, householdID int64, firstName, lastName, email, password string, role model.Role) *model.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("hash password", "error", err)
		internalError(c, "failed to create user")
		return nil
	}

	user, err := s.users.Create(householdID, firstName, lastName, strings.ToLower(email), hash, role)
	if err != nil {
		if store.IsDuplicateEmail(err) {
			fail(c, http.StatusConflict, "email already registered")
			return nil
		}
		s.logger.Error("create user", "error", err)
		internalError(c, "failed to create user")
		return nil
	}
	return user
}

func (s *Server) respondWithToken(c *gin.Context, user *model.User) {
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		s.logger.Error("generate token", "error", err)
		internalError(c, "failed to generate token")
		return
	}
	created(c, authResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := s.users.GetByEmail(strings.ToLower(req.Email))
	if err != nil {
		s.logger.Error("get user", "error", err)
		internalError(c, "failed to look up user")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		s.logger.Error("generate token", "error", err)
		internalError(c, "failed to generate token")
		return
	}
	success(c, authResponse{Token: token, User: user})
}
