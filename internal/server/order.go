package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/tiketin/tiketin/internal/order/domain"
)

type createOrderRequest struct {
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	act := actorFrom(c)
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = act.UserID
	}
	if userID != act.UserID && !act.Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		UserID:   userID,
		EventID:  strings.TrimSpace(req.EventID),
		Quantity: req.Quantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getOrder(c *gin.Context) {
	act := actorFrom(c)

	resp, err := s.orderSvc.GetByID(c.Request.Context(), orderdomain.GetOrderRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		ActorUserID: act.UserID,
		ActorAdmin:  act.Admin,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listOrders(c *gin.Context) {
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

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListOrderRequest{
		UserID: userID,
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listOrderTickets(c *gin.Context) {
	act := actorFrom(c)
	orderID := strings.TrimSpace(c.Param("id"))

	// Visibility follows the order: a caller who cannot see the order
	// cannot see its tickets.
	if _, err := s.orderSvc.GetByID(c.Request.Context(), orderdomain.GetOrderRequest{
		ID:          orderID,
		ActorUserID: act.UserID,
		ActorAdmin:  act.Admin,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	tickets, err := s.ticketSvc.FindByOrder(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tickets})
}
