package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/draft"
	"github.com/smallbiznis/invoicedesk/internal/events"
	"github.com/smallbiznis/invoicedesk/internal/invoice"
	"github.com/smallbiznis/invoicedesk/internal/observability"
	"github.com/smallbiznis/invoicedesk/internal/seed"
	"github.com/smallbiznis/invoicedesk/internal/server"
	"github.com/smallbiznis/invoicedesk/internal/taxrate"
	taxdomain "github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Provide(events.NewOutbox),
		fx.Invoke(func(conn *gorm.DB, cfg config.Config, repo taxdomain.Repository) error {
			if err := conn.AutoMigrate(&taxdomain.TaxRate{}, &events.InvoiceEvent{}); err != nil {
				return err
			}
			if cfg.Bootstrap.SeedTaxRates {
				return seed.EnsureDefaultTaxRates(conn, repo)
			}
			return nil
		}),

		taxrate.Module,
		invoice.Module,
		draft.Module,
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
