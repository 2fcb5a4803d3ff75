package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessage() RunMessage {
	return RunMessage{
		RunID:          "run-1",
		Season:         "win",
		CommunitySize:  10,
		PVPercentage:   50,
		SDPercentage:   20,
		Steps:          2160,
		CostWithLEC:    812.5,
		CostWithoutLEC: 955.25,
		TradingVolume:  140.125,
		FinishedAt:     time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestWebhookNotifierPayload(t *testing.T) {
	payloadCh := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, nil)
	require.NoError(t, err)
	require.NoError(t, notifier.Notify(context.Background(), sampleMessage()))

	payload := <-payloadCh
	assert.Equal(t, "text", payload.MsgType)
	assert.Contains(t, payload.Text.Content, "Season: win")
	assert.Contains(t, payload.Text.Content, "Cost with community: 812.50")
	assert.Equal(t, "run-1", payload.Run.RunID)
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, nil)
	require.NoError(t, err)
	assert.Error(t, notifier.Notify(context.Background(), sampleMessage()))

	_, err = NewWebhookNotifier("", nil)
	assert.Error(t, err)
}

func TestTemplateCustom(t *testing.T) {
	tpl, err := NewTemplate("{{.RunID}}/{{.Season}}")
	require.NoError(t, err)
	out, err := tpl.Render(sampleMessage())
	require.NoError(t, err)
	assert.Equal(t, "run-1/win", out)

	_, err = NewTemplate("{{.RunID")
	assert.Error(t, err)
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, RunMessage) error {
	r.calls++
	return r.err
}

func TestMultiNotifierJoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("boom")}
	multi := NewMultiNotifier(ok, nil, failing)

	err := multi.Notify(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "boom"))
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 3, multi.Len())
}

func TestMQTTNotifierPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := newMQTTNotifier(pub, "lantern/runs")

	require.NoError(t, n.Notify(context.Background(), sampleMessage()))
	assert.Equal(t, "lantern/runs", pub.topic)
	assert.Equal(t, byte(1), pub.qos)

	var decoded RunMessage
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, 10, decoded.CommunitySize)
}

func TestMQTTNotifierPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	n := newMQTTNotifier(pub, "lantern/runs")
	assert.EqualError(t, n.Notify(context.Background(), sampleMessage()), "not connected")
}

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, qos byte, _ bool, payload interface{}) mqttToken {
	f.topic = topic
	f.qos = qos
	f.payload, _ = payload.([]byte)
	return &doneToken{err: f.err}
}

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }
