package ingest

import (
	"github.com/soleworks/soleledger/internal/ingest/notion"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest",
	fx.Provide(notion.NewSyncer),
)
