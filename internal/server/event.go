package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/tiketin/tiketin/internal/event/domain"
)

type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	StartsAt    string `json:"starts_at"`
	Price       int64  `json:"price"`
	Quota       int    `json:"quota"`
}

func (s *Server) createEvent(c *gin.Context) {
	if !actorFrom(c).Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartsAt))
	if err != nil {
		AbortWithError(c, newValidationError("starts_at", "invalid_starts_at", "invalid starts_at"))
		return
	}

	resp, err := s.eventSvc.Create(c.Request.Context(), eventdomain.CreateEventRequest{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartsAt:    startsAt,
		Price:       req.Price,
		Quota:       req.Quota,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listEvents(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int    `form:"page_size,default=20"`
		Status    string `form:"status"`
		Upcoming  bool   `form:"upcoming"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.List(c.Request.Context(), eventdomain.ListEventRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Status:    strings.TrimSpace(query.Status),
		Upcoming:  query.Upcoming,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getEvent(c *gin.Context) {
	resp, err := s.eventSvc.GetByID(c.Request.Context(), eventdomain.GetEventRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Venue       *string `json:"venue"`
	StartsAt    *string `json:"starts_at"`
	Price       *int64  `json:"price"`
	Quota       *int    `json:"quota"`
}

func (s *Server) updateEvent(c *gin.Context) {
	if !actorFrom(c).Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	patch := eventdomain.UpdateEventRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Price:       req.Price,
		Quota:       req.Quota,
	}
	if req.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.StartsAt))
		if err != nil {
			AbortWithError(c, newValidationError("starts_at", "invalid_starts_at", "invalid starts_at"))
			return
		}
		patch.StartsAt = &startsAt
	}

	resp, err := s.eventSvc.Update(c.Request.Context(), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) publishEvent(c *gin.Context) {
	if !actorFrom(c).Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.eventSvc.Publish(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) cancelEvent(c *gin.Context) {
	if !actorFrom(c).Admin {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.eventSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
