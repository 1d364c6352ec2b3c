//go:build wireinject

package bootstrap

import (
	"context"

	"github.com/google/wire"

	httpserver "investtrack/internal/infrastructure/http"
	"investtrack/internal/infrastructure/worker"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvideDB,
	ProvideRepos,
	ProvideIdempotency,
	ProvideMarketProvider,
	ProvideGate,
	ProvideRefresher,
	ProvideServices,
)

// InitAPI builds the HTTP server with its cleanup.
func InitAPI(ctx context.Context) (*httpserver.Server, func(), error) {
	wire.Build(
		infraSet,
		ProvideServer,
	)
	return nil, nil, nil
}

// InitWorker builds the background refresh worker with its cleanup.
func InitWorker(ctx context.Context) (*worker.RefreshWorker, func(), error) {
	wire.Build(
		infraSet,
		ProvideWorker,
	)
	return nil, nil, nil
}
