package bus

import (
	"context"

	"github.com/MacMoment/coding/internal/realtime"
)

// Bus carries realtime messages from workers to API processes.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
