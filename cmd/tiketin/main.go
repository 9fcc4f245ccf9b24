package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tiketin/tiketin/internal/clock"
	"github.com/tiketin/tiketin/internal/config"
	"github.com/tiketin/tiketin/internal/event"
	"github.com/tiketin/tiketin/internal/migration"
	"github.com/tiketin/tiketin/internal/notification"
	"github.com/tiketin/tiketin/internal/observability"
	"github.com/tiketin/tiketin/internal/order"
	"github.com/tiketin/tiketin/internal/payment"
	"github.com/tiketin/tiketin/internal/providers/artifact"
	"github.com/tiketin/tiketin/internal/providers/email"
	paymentprovider "github.com/tiketin/tiketin/internal/providers/payment"
	"github.com/tiketin/tiketin/internal/scheduler"
	"github.com/tiketin/tiketin/internal/server"
	"github.com/tiketin/tiketin/internal/ticket"
	"github.com/tiketin/tiketin/internal/user"
	"github.com/tiketin/tiketin/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Providers
		paymentprovider.Module,
		email.Module,
		artifact.Module,

		// Functional domains
		user.Module,
		event.Module,
		ticket.Module,
		notification.Module,
		order.Module,
		payment.Module,
		scheduler.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
