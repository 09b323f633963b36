package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/outsourceapp/outsource-server/internal/config"
	"github.com/outsourceapp/outsource-server/internal/logger"
	"github.com/outsourceapp/outsource-server/internal/recommend"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// ProvideWeatherClient provides the National Weather Service client.
func ProvideWeatherClient(i do.Injector) (*weather.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return weather.NewClient(cfg.Weather.BaseURL, log.Logger), nil
}

// GeneratorHandle wraps the activity generator for injection.
type GeneratorHandle struct {
	recommend.Generator
}

// disabledGenerator rejects every request. Used when no OpenAI key is configured.
type disabledGenerator struct{}

func (disabledGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "", errors.New("no OpenAI API key configured")
}

// ProvideGenerator provides the activity recommendation generator.
func ProvideGenerator(i do.Injector) (*GeneratorHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, recommendations will be unavailable")
		return &GeneratorHandle{Generator: disabledGenerator{}}, nil
	}

	gen, err := recommend.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model, log.Logger)
	if err != nil {
		return nil, err
	}

	return &GeneratorHandle{Generator: gen}, nil
}
