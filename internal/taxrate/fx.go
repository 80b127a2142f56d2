package taxrate

import (
	"github.com/smallbiznis/invoicedesk/internal/taxrate/repository"
	"github.com/smallbiznis/invoicedesk/internal/taxrate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxrate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
