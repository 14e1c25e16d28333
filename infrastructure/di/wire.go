//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"localaws/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDynamoProvider,
	ProvideS3Provider,
	ProvideDynamoHandler,
	ProvideS3Handler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
