package main

import (
	"context"
	"log/slog"
	"os"

	"studybuddy/config"
	"studybuddy/internal/delivery"
	"studybuddy/internal/delivery/cli"
	"studybuddy/internal/delivery/status"
	"studybuddy/internal/delivery/worker"
	"studybuddy/internal/infra/api"
	"studybuddy/internal/infra/auth"
	"studybuddy/internal/infra/broadcast"
	logs "studybuddy/internal/infra/log"
	"studybuddy/internal/infra/notify"
	"studybuddy/internal/infra/storage"
	"studybuddy/internal/usecase"
	"studybuddy/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Shutdowner

	Session    usecase.SessionUsecase
	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		broadcast.New,
		func(cfg *config.Config) (*storage.FileStore, error) {
			return storage.NewFileStore(cfg.Storage.Path)
		},
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			storage.NewCredentialRepository,
			storage.NewTriggerRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewTokenInspector,
			api.NewPipeline,
			api.NewAPIClient,
			api.NewFallbackNotifier,
			notify.NewTimerPlatform,
			notify.NewNotificationPlatform,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewUserService,
			impl.NewTaskService,
			impl.NewCourseService,
			impl.NewEventService,
			impl.NewNotificationService,
			impl.NewReminderService,
			impl.NewReconcileService,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				status.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				cli.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	// Resolve stored credentials before any delivery starts serving.
	session := params.Session.Hydrate(ctx)
	slog.Info("Session resolved", slog.String("state", session.State.String()))

	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
