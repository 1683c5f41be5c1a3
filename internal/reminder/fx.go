package reminder

import (
	"github.com/chikoro/feeledger/internal/reminder/repository"
	"github.com/chikoro/feeledger/internal/reminder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reminder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
