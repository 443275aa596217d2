package router

import (
	"github.com/oksasatya/go-ddd-user-registration/internal/application"
	"github.com/oksasatya/go-ddd-user-registration/internal/container"
	"github.com/oksasatya/go-ddd-user-registration/internal/infrastructure/messaging"
	"github.com/oksasatya/go-ddd-user-registration/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-ddd-user-registration/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-registration/internal/router/modules"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
)

type RegisterModuleDeps struct {
	UseCase *application.RegisterUseCase
	Handler *handlers.RegisterHandler
}

// BuildRegisterUseCase wires the use case from container singletons.
// Welcome mail and search indexing are attached only when their backends exist.
func BuildRegisterUseCase() *application.RegisterUseCase {
	cfg := container.GetConfig()

	var listeners []application.RegistrationListener
	if pub := container.GetRabbitPub(); pub != nil {
		listeners = append(listeners, messaging.NewWelcomePublisher(pub, cfg))
	}
	if es := container.GetES(); es != nil {
		listeners = append(listeners, search.NewUserIndexer(es, cfg.ESUsersIndex))
	}

	return application.NewRegisterUseCase(
		container.GetUserRepo(),
		helpers.NewBcryptHasher(cfg.BcryptCost),
		container.GetLogger(),
		listeners...,
	)
}

func buildRegisterDeps() RegisterModuleDeps {
	uc := BuildRegisterUseCase()
	return RegisterModuleDeps{
		UseCase: uc,
		Handler: handlers.NewRegisterHandler(uc, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	deps := buildRegisterDeps()
	r.Add(modules.NewRegisterModule(deps.Handler, container.GetRedis(), cfg.RegisterRateLimit))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
