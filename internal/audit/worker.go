package audit

import "context"

// Worker consumes audit events from a channel and persists them through the
// publisher. It keeps hot request paths from blocking on slow sinks.
type Worker struct {
	pub   *Publisher
	inbox <-chan Event
}

func NewWorker(pub *Publisher, inbox <-chan Event) *Worker {
	return &Worker{pub: pub, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.pub.Emit(ctx, event); err != nil {
				return err
			}
		}
	}
}
