// Package di provides dependency injection configuration for the Outsource server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/outsourceapp/outsource-server/internal/auth"
	"github.com/outsourceapp/outsource-server/internal/config"
	"github.com/outsourceapp/outsource-server/internal/di/providers"
	"github.com/outsourceapp/outsource-server/internal/logger"
	"github.com/outsourceapp/outsource-server/internal/service"
	"github.com/outsourceapp/outsource-server/internal/validation"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// External clients
	do.Provide(injector, providers.ProvideWeatherClient)
	do.Provide(injector, providers.ProvideGenerator)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideFriendService)
	do.Provide(injector, providers.ProvideCircleService)
	do.Provide(injector, providers.ProvideEventService)
	do.Provide(injector, providers.ProvideRecommendationService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*weather.Client](injector)
	_ = do.MustInvoke[*providers.GeneratorHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.FriendService](injector)
	_ = do.MustInvoke[*service.CircleService](injector)
	_ = do.MustInvoke[*service.EventService](injector)
	_ = do.MustInvoke[*service.RecommendationService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
