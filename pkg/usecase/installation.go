package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/assayer/pkg/domain/interfaces"
	"github.com/m-mizutani/assayer/pkg/domain/model"
)

type installationUseCase struct {
	repo interfaces.Repository
}

// NewInstallation creates a new instance of InstallationUseCase
func NewInstallation(repo interfaces.Repository) interfaces.InstallationUseCase {
	return &installationUseCase{repo: repo}
}

// RegisterInstallation records a new App installation. Persistence is
// best-effort, a storage failure only logs.
func (uc *installationUseCase) RegisterInstallation(ctx context.Context, inst *model.Installation) error {
	logger := ctxlog.From(ctx)

	logger.Info("App installed",
		"installation_id", inst.ID,
		"account", inst.Account,
		"repository_count", len(inst.Repositories),
	)
	for _, repo := range inst.Repositories {
		logger.Debug("Authorized repository", "repository", repo)
	}

	if err := uc.repo.SaveInstallation(ctx, inst); err != nil {
		logger.Error("Failed to save installation record", "error", err)
	}

	return nil
}
