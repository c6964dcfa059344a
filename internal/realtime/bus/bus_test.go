package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/realtime"
)

func TestMemoryBusForwardsToEveryHandler(t *testing.T) {
	b := NewMemoryBus()
	var a, c []realtime.Message
	require.NoError(t, b.StartForwarder(context.Background(), func(m realtime.Message) { a = append(a, m) }))
	require.NoError(t, b.StartForwarder(context.Background(), func(m realtime.Message) { c = append(c, m) }))

	msg := realtime.Message{Channel: "u1", Event: realtime.EventGenerationCompleted}
	require.NoError(t, b.Publish(context.Background(), msg))
	assert.Equal(t, []realtime.Message{msg}, a)
	assert.Equal(t, []realtime.Message{msg}, c)

	require.NoError(t, b.Close())
	require.NoError(t, b.Publish(context.Background(), msg))
	assert.Len(t, a, 1)
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	_, err := NewRedisBus(logger.Nop(), RedisConfig{})
	assert.Error(t, err)
}
