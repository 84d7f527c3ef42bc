package inventory

import (
	"github.com/soleworks/soleledger/internal/inventory/repository"
	"github.com/soleworks/soleledger/internal/inventory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
