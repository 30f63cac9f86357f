package apiv1

import (
	"github.com/gin-gonic/gin"
)

// generateInvite rotates the household invite code and returns the new one.
// Rotating invalidates any code shared earlier.
func (s *Server) generateInvite(c *gin.Context) {
	claims := getClaims(c)

	code, err := s.households.RotateInviteCode(claims.HouseholdID)
	if err != nil {
		s.logger.Error("rotate invite code", "error", err)
		internalError(c, "failed to generate invite code")
		return
	}
	success(c, gin.H{"invite_code": code})
}
