package reference

import "go.uber.org/fx"

// Module provides the shared lookup repository for subdealers, models,
// price headers, cash locations, banks and finance providers.
var Module = fx.Module("reference",
	fx.Provide(NewRepository),
)
