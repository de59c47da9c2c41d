package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/assayer/pkg/cli/config"
	githubctrl "github.com/m-mizutani/assayer/pkg/controller/github"
	controller "github.com/m-mizutani/assayer/pkg/controller/http"
	"github.com/m-mizutani/assayer/pkg/domain/interfaces"
	fsinfra "github.com/m-mizutani/assayer/pkg/infra/firestore"
	geminiinfra "github.com/m-mizutani/assayer/pkg/infra/gemini"
	githubinfra "github.com/m-mizutani/assayer/pkg/infra/github"
	"github.com/m-mizutani/assayer/pkg/infra/memory"
	ollamainfra "github.com/m-mizutani/assayer/pkg/infra/ollama"
	slackinfra "github.com/m-mizutani/assayer/pkg/infra/slack"
	"github.com/m-mizutani/assayer/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		geminiCfg    config.Gemini
		ollamaCfg    config.Ollama
		firestoreCfg config.Firestore
		slackCfg     config.Slack
	)

	flags := serverCfg.Flags()
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, ollamaCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting assayer server",
				slog.String("addr", serverCfg.Addr),
			)

			// GitHub client: App credentials when configured, token otherwise
			githubClient, err := newGitHubClient(&githubCfg)
			if err != nil {
				return err
			}

			// Analysis provider: Gemini when configured, local Ollama otherwise
			provider, err := newProvider(ctx, &geminiCfg, &ollamaCfg)
			if err != nil {
				return err
			}

			// Repository: Firestore when configured, in-memory otherwise
			repo, closeRepo, err := newRepository(ctx, &firestoreCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			analyzer := usecase.NewAnalyzer(provider)

			var analysisOpts []usecase.AnalysisOption
			if slackCfg.Enabled() {
				analysisOpts = append(analysisOpts,
					usecase.WithNotifier(slackinfra.New(slackCfg.WebhookURL)))
			}

			analysisUC := usecase.NewAnalysis(githubClient, analyzer, repo, analysisOpts...)
			installationUC := usecase.NewInstallation(repo)
			processor := githubctrl.NewEventProcessor(analysisUC, installationUC)

			server, err := controller.NewServer(
				ctx,
				processor,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

func newGitHubClient(cfg *config.GitHub) (*githubinfra.Client, error) {
	if cfg.UsesApp() {
		key, err := cfg.PrivateKey()
		if err != nil {
			return nil, err
		}
		return githubinfra.NewClient(githubinfra.WithAppCredentials(cfg.AppID, key))
	}
	if cfg.Token != "" {
		return githubinfra.NewClient(githubinfra.WithToken(cfg.Token))
	}
	return nil, goerr.New("GitHub credentials required: set App credentials or a token")
}

func newProvider(ctx context.Context, geminiCfg *config.Gemini, ollamaCfg *config.Ollama) (interfaces.Provider, error) {
	if geminiCfg.Enabled() {
		llmClient, err := gemini.New(ctx, geminiCfg.Location, geminiCfg.ProjectID,
			gemini.WithModel(geminiCfg.Model),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return geminiinfra.New(llmClient)
	}

	return ollamainfra.New(
		ollamainfra.WithBaseURL(ollamaCfg.BaseURL),
		ollamainfra.WithModel(ollamaCfg.Model),
		ollamainfra.WithTemperature(ollamaCfg.Temperature),
	)
}

func newRepository(ctx context.Context, cfg *config.Firestore) (interfaces.Repository, func(), error) {
	if cfg.Enabled() {
		client, err := fsinfra.New(ctx, cfg.ProjectID, cfg.DatabaseID)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}
	return memory.New(), func() {}, nil
}
