package platform

import (
	"github.com/soleworks/soleledger/internal/platform/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("platform",
	fx.Provide(repository.Provide),
)
