package providers

import (
	"github.com/samber/do/v2"

	"github.com/outsourceapp/outsource-server/internal/auth"
	"github.com/outsourceapp/outsource-server/internal/logger"
	"github.com/outsourceapp/outsource-server/internal/service"
	"github.com/outsourceapp/outsource-server/internal/validation"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, validator, log.Logger), nil
}

// ProvideProfileService provides the user profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, log.Logger), nil
}

// ProvideFriendService provides the friend graph service.
func ProvideFriendService(i do.Injector) (*service.FriendService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFriendService(storeHandle.Store, log.Logger), nil
}

// ProvideCircleService provides the circle service.
func ProvideCircleService(i do.Injector) (*service.CircleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCircleService(storeHandle.Store, log.Logger), nil
}

// ProvideEventService provides the event service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEventService(storeHandle.Store, log.Logger), nil
}

// ProvideRecommendationService provides the activity recommendation service.
func ProvideRecommendationService(i do.Injector) (*service.RecommendationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	weatherClient := do.MustInvoke[*weather.Client](i)
	generatorHandle := do.MustInvoke[*GeneratorHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecommendationService(storeHandle.Store, weatherClient, generatorHandle.Generator, log.Logger), nil
}
