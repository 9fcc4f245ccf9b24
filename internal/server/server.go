package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tiketin/tiketin/internal/config"
	eventdomain "github.com/tiketin/tiketin/internal/event/domain"
	notificationdomain "github.com/tiketin/tiketin/internal/notification/domain"
	obslogger "github.com/tiketin/tiketin/internal/observability/logger"
	orderdomain "github.com/tiketin/tiketin/internal/order/domain"
	paymentdomain "github.com/tiketin/tiketin/internal/payment/domain"
	ticketdomain "github.com/tiketin/tiketin/internal/ticket/domain"
	userdomain "github.com/tiketin/tiketin/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterWebhookRoutes()
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	userSvc         userdomain.Service
	eventSvc        eventdomain.Service
	orderSvc        orderdomain.Service
	ticketSvc       ticketdomain.Service
	notificationSvc notificationdomain.Service
	paymentSvc      paymentdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	UserSvc         userdomain.Service
	EventSvc        eventdomain.Service
	OrderSvc        orderdomain.Service
	TicketSvc       ticketdomain.Service
	NotificationSvc notificationdomain.Service
	PaymentSvc      paymentdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		userSvc:         p.UserSvc,
		eventSvc:        p.EventSvc,
		orderSvc:        p.OrderSvc,
		ticketSvc:       p.TicketSvc,
		notificationSvc: p.NotificationSvc,
		paymentSvc:      p.PaymentSvc,
	}
}

func (s *Server) RegisterWebhookRoutes() {
	s.engine.POST("/webhooks/xendit", s.handleXenditWebhook)
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/users", s.createUser)
	api.GET("/users/:id", s.getUser)

	api.POST("/events", s.createEvent)
	api.GET("/events", s.listEvents)
	api.GET("/events/:id", s.getEvent)
	api.PATCH("/events/:id", s.updateEvent)
	api.POST("/events/:id/publish", s.publishEvent)
	api.POST("/events/:id/cancel", s.cancelEvent)

	api.POST("/orders", s.createOrder)
	api.GET("/orders", s.listOrders)
	api.GET("/orders/:id", s.getOrder)
	api.GET("/orders/:id/tickets", s.listOrderTickets)

	api.GET("/tickets/:code/validate", s.validateTicket)
	api.POST("/tickets/:code/redeem", s.redeemTicket)

	api.GET("/notifications", s.listNotifications)
}

// actor identity comes from gateway-provided headers; session handling
// lives outside this service.
type actor struct {
	UserID string
	Admin  bool
}

func actorFrom(c *gin.Context) actor {
	return actor{
		UserID: c.GetHeader("X-User-ID"),
		Admin:  c.GetHeader("X-User-Role") == userdomain.RoleAdmin,
	}
}
