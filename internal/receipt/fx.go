package receipt

import (
	"github.com/chikoro/feeledger/internal/receipt/repository"
	"github.com/chikoro/feeledger/internal/receipt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
