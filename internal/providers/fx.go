package providers

import (
	"github.com/chikoro/feeledger/internal/providers/email"
	"github.com/chikoro/feeledger/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
