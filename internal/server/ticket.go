package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/tiketin/tiketin/internal/ticket/domain"
)

func (s *Server) validateTicket(c *gin.Context) {
	act := actorFrom(c)

	resp, err := s.ticketSvc.Validate(c.Request.Context(), ticketdomain.ValidateRequest{
		Code:        strings.TrimSpace(c.Param("code")),
		ActorUserID: act.UserID,
		ActorAdmin:  act.Admin,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) redeemTicket(c *gin.Context) {
	// Redemption is a gate-staff action.
	if !actorFrom(c).Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.ticketSvc.Redeem(c.Request.Context(), ticketdomain.RedeemRequest{
		Code: strings.TrimSpace(c.Param("code")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
