package bus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	gochannel "github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/dipole/pkg/progress"
)

func TestNewEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypeLogBatch, LogBatch{Op: "deploy", Lines: []string{"a", "b"}, Total: 2})
	require.NoError(t, err)
	require.Equal(t, TypeLogBatch, env.Type)

	b, err := env.MarshalJSONBytes()
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(b, &decoded))
	var batch LogBatch
	require.NoError(t, json.Unmarshal(decoded.Payload, &batch))
	require.Equal(t, []string{"a", "b"}, batch.Lines)
}

func TestNewEnvelope_EmptyType(t *testing.T) {
	_, err := NewEnvelope("", nil)
	require.Error(t, err)
}

func TestPublish_NilPublisherIsNoop(t *testing.T) {
	require.NoError(t, Publish(nil, TypeProgress, Progress{}))
}

func TestPublish_DeliversEnvelope(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer func() { _ = pubsub.Close() }()

	msgs, err := pubsub.Subscribe(context.Background(), TopicInvocationEvents)
	require.NoError(t, err)

	want := Progress{State: progress.State{Step: progress.StepDeploy, Status: progress.StatusActive}}
	require.NoError(t, Publish(pubsub, TypeProgress, want))

	select {
	case msg := <-msgs:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Payload, &env))
		require.Equal(t, TypeProgress, env.Type)
		var got Progress
		require.NoError(t, json.Unmarshal(env.Payload, &got))
		require.Equal(t, want.State, got.State)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}
