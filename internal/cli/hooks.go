package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/codegraph/pkg/observability"
)

// stageHooks narrates pipeline stages on a spinner.
type stageHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

// trackStages routes pipeline events to s until the returned func is called.
func trackStages(s *Spinner) (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(&stageHooks{spinner: s})
	return func() { observability.SetPipelineHooks(prev) }
}

func (h *stageHooks) OnFetchStart(_ context.Context, project, view string) {
	h.spinner.SetMessage(fmt.Sprintf("Fetching %s (%s)...", project, view))
}

func (h *stageHooks) OnFetchComplete(_ context.Context, _, _ string, nodes int, d time.Duration, err error) {
	if err == nil {
		h.spinner.SetMessage(fmt.Sprintf("Fetched %d nodes in %s", nodes, d.Round(time.Millisecond)))
	}
}

func (h *stageHooks) OnCluster(_ context.Context, before, after, clusters int) {
	h.spinner.SetMessage(fmt.Sprintf("Clustered %d nodes into %d (%d clusters)", before, after, clusters))
}

func (h *stageHooks) OnLayoutStart(_ context.Context, strategy string, nodes int) {
	h.spinner.SetMessage(fmt.Sprintf("Computing %s layout for %d nodes...", strategy, nodes))
}

func (h *stageHooks) OnRenderStart(_ context.Context, formats []string) {
	h.spinner.SetMessage(fmt.Sprintf("Rendering %s...", strings.Join(formats, ", ")))
}
