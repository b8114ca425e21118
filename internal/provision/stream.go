package provision

import (
	"context"

	"github.com/plantit/plantit/internal/domain/types"
)

// Stream runs one workflow and delivers its outcomes on a channel, the
// terminal outcome last. The channel is closed when the run ends; the
// caller always receives a final status.
func Stream(ctx context.Context, s Service, req types.ProvisioningRequest) <-chan types.WorkflowOutcome {
	// stage outcomes are few and bounded, the buffer keeps the run
	// from blocking on a slow consumer
	ch := make(chan types.WorkflowOutcome, 8)
	go func() {
		defer close(ch)
		var last types.WorkflowOutcome
		final := s.Provision(ctx, req, func(out types.WorkflowOutcome) {
			last = out
			ch <- out
		})
		// the terminal outcome is emitted by the run itself; guard
		// against an emitter that never saw it
		if last != final {
			ch <- final
		}
	}()
	return ch
}
