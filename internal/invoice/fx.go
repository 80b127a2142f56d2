package invoice

import (
	"github.com/smallbiznis/invoicedesk/internal/invoice/render"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.render",
	fx.Provide(render.NewRenderer),
)
