package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/outsourceapp/outsource-server/internal/api"
	"github.com/outsourceapp/outsource-server/internal/config"
	"github.com/outsourceapp/outsource-server/internal/logger"
	"github.com/outsourceapp/outsource-server/internal/service"
	"github.com/outsourceapp/outsource-server/internal/weather"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	friendService := do.MustInvoke[*service.FriendService](i)
	circleService := do.MustInvoke[*service.CircleService](i)
	eventService := do.MustInvoke[*service.EventService](i)
	recommendationService := do.MustInvoke[*service.RecommendationService](i)
	weatherClient := do.MustInvoke[*weather.Client](i)

	handler := api.NewServer(authService, profileService, friendService, circleService, eventService, recommendationService, weatherClient, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
