package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/tiketin/tiketin/internal/notification/domain"
)

func (s *Server) listNotifications(c *gin.Context) {
	var query struct {
		UserID string `form:"user_id"`
		Limit  int    `form:"limit,default=20"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	act := actorFrom(c)
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		userID = act.UserID
	}
	if userID != act.UserID && !act.Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.ListNotificationRequest{
		UserID: userID,
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
