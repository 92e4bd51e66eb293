package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJetStream struct {
	calls     []string
	streams   []jetstream.StreamConfig
	consumers []jetstream.ConsumerConfig
	streamErr error
}

func (f *fakeJetStream) CreateOrUpdateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.calls = append(f.calls, "stream")
	f.streams = append(f.streams, cfg)
	return nil, f.streamErr
}

func (f *fakeJetStream) CreateOrUpdateConsumer(_ context.Context, stream string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error) {
	f.calls = append(f.calls, "consumer:"+stream)
	f.consumers = append(f.consumers, cfg)
	return nil, errors.New("no server")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "docqa.document.ingested", Subject("document.ingested"))
	assert.Equal(t, "docqa.>", Subject(">"))
}

func TestEnsureStream(t *testing.T) {
	js := &fakeJetStream{}
	require.NoError(t, ensureStream(context.Background(), js))

	require.Len(t, js.streams, 1)
	assert.Equal(t, StreamName, js.streams[0].Name)
	assert.Equal(t, []string{"docqa.>"}, js.streams[0].Subjects)

	js.streamErr = errors.New("jetstream disabled")
	assert.ErrorIs(t, ensureStream(context.Background(), js), js.streamErr)
}

func TestSubscribe_EnsuresStreamBeforeConsumer(t *testing.T) {
	tests := []struct {
		name      string
		streamErr error
		wantCalls []string
	}{
		{name: "stream first", wantCalls: []string{"stream", "consumer:DOCQA"}},
		{name: "stream failure stops early", streamErr: errors.New("jetstream disabled"), wantCalls: []string{"stream"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js := &fakeJetStream{streamErr: tt.streamErr}
			s := &Subscriber{js: js}

			_, err := s.Subscribe(context.Background(), "turn.completed", "", nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantCalls, js.calls)
			if tt.streamErr == nil {
				require.Len(t, js.consumers, 1)
				assert.Equal(t, "docqa.turn.completed", js.consumers[0].FilterSubject)
				assert.Equal(t, jetstream.DeliverNewPolicy, js.consumers[0].DeliverPolicy)
			}
		})
	}
}
