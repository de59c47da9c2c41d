package github

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/assayer/pkg/domain/interfaces"
	"github.com/m-mizutani/assayer/pkg/domain/model"
)

// EventProcessor classifies GitHub webhook events and routes them to the
// matching use case. It runs inside the detached background task, after
// the webhook delivery has already been acknowledged.
type EventProcessor struct {
	analysisUC     interfaces.AnalysisUseCase
	installationUC interfaces.InstallationUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(analysisUC interfaces.AnalysisUseCase, installationUC interfaces.InstallationUseCase) *EventProcessor {
	return &EventProcessor{
		analysisUC:     analysisUC,
		installationUC: installationUC,
	}
}

// ProcessEvent decodes the payload into the event-specific type keyed on
// the event header and dispatches it. Unknown combinations are logged as
// unhandled, never silently dropped.
func (p *EventProcessor) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	switch event.Type {
	case model.EventTypePullRequest:
		return p.processPullRequestEvent(ctx, event)
	case model.EventTypeInstallation:
		return p.processInstallationEvent(ctx, event)
	case model.EventTypePing:
		logger.Info("Ping received, connection is healthy", "delivery_id", event.ID)
		return nil
	default:
		logger.Info("Ignoring unhandled event",
			"event_type", event.Type,
			"action", event.Action,
			"delivery_id", event.ID,
		)
		return nil
	}
}

func (p *EventProcessor) processPullRequestEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if event.Action != "opened" && event.Action != "synchronize" {
		logger.Info("Ignoring pull request event with unhandled action",
			"action", event.Action,
			"delivery_id", event.ID,
		)
		return nil
	}

	var prEvent github.PullRequestEvent
	if err := json.Unmarshal(event.RawPayload, &prEvent); err != nil {
		return goerr.Wrap(err, "failed to unmarshal pull request event", goerr.V("delivery_id", event.ID))
	}

	ref, err := extractPullRequestRef(&prEvent)
	if err != nil {
		return err
	}

	logger.Info("Starting pull request analysis",
		"repository", ref.FullName(),
		"number", ref.Number,
		"action", event.Action,
		"delivery_id", event.ID,
	)

	return p.analysisUC.AnalyzePullRequest(ctx, ref)
}

// extractPullRequestRef pulls the identity of the unit of work out of the
// event. Owner and repo are carried explicitly from here on.
func extractPullRequestRef(event *github.PullRequestEvent) (*model.PullRequestRef, error) {
	owner := event.GetRepo().GetOwner().GetLogin()
	repo := event.GetRepo().GetName()
	number := event.GetPullRequest().GetNumber()
	headSHA := event.GetPullRequest().GetHead().GetSHA()

	if owner == "" || repo == "" || number == 0 || headSHA == "" {
		return nil, goerr.New("missing required pull request fields",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number),
			goerr.V("head_sha", headSHA),
		)
	}

	return &model.PullRequestRef{
		Owner:          owner,
		Repo:           repo,
		Number:         number,
		HeadSHA:        headSHA,
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

func (p *EventProcessor) processInstallationEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if event.Action != "created" {
		logger.Info("Ignoring installation event with unhandled action",
			"action", event.Action,
			"delivery_id", event.ID,
		)
		return nil
	}

	var instEvent github.InstallationEvent
	if err := json.Unmarshal(event.RawPayload, &instEvent); err != nil {
		return goerr.Wrap(err, "failed to unmarshal installation event", goerr.V("delivery_id", event.ID))
	}

	repos := make([]string, 0, len(instEvent.Repositories))
	for _, r := range instEvent.Repositories {
		repos = append(repos, r.GetFullName())
	}

	return p.installationUC.RegisterInstallation(ctx, &model.Installation{
		ID:           instEvent.GetInstallation().GetID(),
		Account:      instEvent.GetInstallation().GetAccount().GetLogin(),
		Repositories: repos,
		InstalledAt:  time.Now(),
	})
}
