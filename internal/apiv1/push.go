package apiv1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getVAPIDKey(c *gin.Context) {
	if s.pushSvc == nil {
		fail(c, http.StatusServiceUnavailable, "push notifications not configured")
		return
	}
	success(c, gin.H{"public_key": s.pushSvc.VAPIDPublicKey()})
}

// subscribeRequest mirrors the browser PushSubscription JSON shape.
type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

func (s *Server) subscribePush(c *gin.Context) {
	claims := getClaims(c)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sub, err := s.pushSubs.Upsert(claims.UserID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		s.logger.Error("upsert subscription", "error", err)
		internalError(c, "failed to store subscription")
		return
	}
	created(c, sub)
}
