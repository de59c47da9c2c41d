package github_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/assayer/pkg/controller/github"
	"github.com/m-mizutani/assayer/pkg/domain/model"
)

type mockAnalysisUC struct {
	calls []*model.PullRequestRef
	err   error
}

func (m *mockAnalysisUC) AnalyzePullRequest(ctx context.Context, ref *model.PullRequestRef) error {
	m.calls = append(m.calls, ref)
	return m.err
}

type mockInstallationUC struct {
	calls []*model.Installation
}

func (m *mockInstallationUC) RegisterInstallation(ctx context.Context, inst *model.Installation) error {
	m.calls = append(m.calls, inst)
	return nil
}

const prPayload = `{
	"action": "opened",
	"pull_request": {
		"number": 42,
		"title": "Fix memory leak",
		"head": {"sha": "abc123"}
	},
	"repository": {
		"name": "hello-world",
		"full_name": "octocat/hello-world",
		"owner": {"login": "octocat"}
	},
	"installation": {"id": 999}
}`

const installationPayload = `{
	"action": "created",
	"installation": {
		"id": 12345,
		"account": {"login": "octocat"}
	},
	"repositories": [
		{"full_name": "octocat/hello-world"},
		{"full_name": "octocat/spoon-knife"}
	]
}`

func TestEventProcessor_ProcessEvent(t *testing.T) {
	newEvent := func(eventType model.WebhookEventType, action, payload string) *model.WebhookEvent {
		return &model.WebhookEvent{
			ID:         "test-delivery",
			Type:       eventType,
			Action:     action,
			RawPayload: []byte(payload),
		}
	}

	t.Run("pull_request opened triggers analysis with the extracted ref", func(t *testing.T) {
		analysisUC := &mockAnalysisUC{}
		installationUC := &mockInstallationUC{}
		p := controller.NewEventProcessor(analysisUC, installationUC)

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypePullRequest, "opened", prPayload)))
		gt.Value(t, len(analysisUC.calls)).Equal(1)

		ref := analysisUC.calls[0]
		gt.Value(t, ref.Owner).Equal("octocat")
		gt.Value(t, ref.Repo).Equal("hello-world")
		gt.Value(t, ref.Number).Equal(42)
		gt.Value(t, ref.HeadSHA).Equal("abc123")
		gt.Value(t, ref.InstallationID).Equal(int64(999))
		gt.Value(t, len(installationUC.calls)).Equal(0)
	})

	t.Run("pull_request synchronize also triggers analysis", func(t *testing.T) {
		analysisUC := &mockAnalysisUC{}
		p := controller.NewEventProcessor(analysisUC, &mockInstallationUC{})

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypePullRequest, "synchronize", prPayload)))
		gt.Value(t, len(analysisUC.calls)).Equal(1)
	})

	t.Run("pull_request closed is a recognized no-op", func(t *testing.T) {
		analysisUC := &mockAnalysisUC{}
		p := controller.NewEventProcessor(analysisUC, &mockInstallationUC{})

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypePullRequest, "closed", prPayload)))
		gt.Value(t, len(analysisUC.calls)).Equal(0)
	})

	t.Run("pull_request payload missing head SHA fails", func(t *testing.T) {
		analysisUC := &mockAnalysisUC{}
		p := controller.NewEventProcessor(analysisUC, &mockInstallationUC{})

		payload := `{"action":"opened","pull_request":{"number":42},"repository":{"name":"r","owner":{"login":"o"}}}`
		gt.Error(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypePullRequest, "opened", payload)))
		gt.Value(t, len(analysisUC.calls)).Equal(0)
	})

	t.Run("installation created registers the installation", func(t *testing.T) {
		installationUC := &mockInstallationUC{}
		p := controller.NewEventProcessor(&mockAnalysisUC{}, installationUC)

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypeInstallation, "created", installationPayload)))
		gt.Value(t, len(installationUC.calls)).Equal(1)

		inst := installationUC.calls[0]
		gt.Value(t, inst.ID).Equal(int64(12345))
		gt.Value(t, inst.Account).Equal("octocat")
		gt.Value(t, inst.Repositories).Equal([]string{"octocat/hello-world", "octocat/spoon-knife"})
	})

	t.Run("installation deleted is a recognized no-op", func(t *testing.T) {
		installationUC := &mockInstallationUC{}
		p := controller.NewEventProcessor(&mockAnalysisUC{}, installationUC)

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypeInstallation, "deleted", installationPayload)))
		gt.Value(t, len(installationUC.calls)).Equal(0)
	})

	t.Run("ping performs no downstream calls", func(t *testing.T) {
		analysisUC := &mockAnalysisUC{}
		installationUC := &mockInstallationUC{}
		p := controller.NewEventProcessor(analysisUC, installationUC)

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.EventTypePing, "", `{"zen":"Design for failure."}`)))
		gt.Value(t, len(analysisUC.calls)).Equal(0)
		gt.Value(t, len(installationUC.calls)).Equal(0)
	})

	t.Run("unknown event type is a recognized no-op", func(t *testing.T) {
		analysisUC := &mockAnalysisUC{}
		p := controller.NewEventProcessor(analysisUC, &mockInstallationUC{})

		gt.NoError(t, p.ProcessEvent(context.Background(), newEvent(model.WebhookEventType("issues"), "opened", `{}`)))
		gt.Value(t, len(analysisUC.calls)).Equal(0)
	})
}
