package bus

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gochannel "github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
)

// Bus is the in-memory transport between the bridge driving an
// invocation and whoever is watching it (TUI, stream printer). It owns
// the invocation topic: the bridge gets a publisher, consumers register
// handlers, and nobody else touches topics directly.
type Bus struct {
	router *message.Router
	pubsub *gochannel.GoChannel

	runOnce sync.Once
}

func NewInMemoryBus() (*Bus, error) {
	logger := watermill.NopLogger{}
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1024}, logger)

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "new watermill router")
	}
	return &Bus{router: router, pubsub: pubsub}, nil
}

// Publisher is what the bridge publishes invocation events through.
func (b *Bus) Publisher() message.Publisher {
	return b.pubsub
}

// AddInvocationHandler registers a consumer of the invocation topic.
// Handlers must be added before Run.
func (b *Bus) AddInvocationHandler(name string, handler func(*message.Message) error) {
	b.router.AddConsumerHandler(name, TopicInvocationEvents, b.pubsub, handler)
}

// Run drives the registered handlers until the context is cancelled.
// Only the first call runs; later calls are no-ops.
func (b *Bus) Run(ctx context.Context) error {
	var runErr error
	b.runOnce.Do(func() {
		go func() {
			<-ctx.Done()
			_ = b.router.Close()
		}()
		runErr = b.router.Run(ctx)
	})
	return runErr
}
