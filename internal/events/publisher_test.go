package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplitter/internal/models"
)

type recorder struct {
	got []models.Event
}

func (r *recorder) Publish(_ context.Context, events []models.Event) {
	r.got = append(r.got, events...)
}

type fakeStream struct {
	args []*redis.XAddArgs
	err  error
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.args = append(f.args, a)
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func sampleEvents() []models.Event {
	id := models.BillIDFromString("dinner")
	return []models.Event{
		{ID: "e1", Seq: 1, Ledger: models.LedgerV2, Kind: models.EventBillCreated, BillID: id, SharePrice: "10000000", TotalShares: 5},
		{ID: "e2", Seq: 2, Ledger: models.LedgerV2, Kind: models.EventBillClosed, BillID: id},
	}
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Fanout{a, Nop{}, b}.Publish(context.Background(), sampleEvents())

	assert.Len(t, a.got, 2)
	assert.Len(t, b.got, 2)
	assert.Equal(t, models.EventBillClosed, b.got[1].Kind)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	NewLogPublisher(logger).Publish(context.Background(), sampleEvents())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "BillCreated", first["kind"])
	assert.Equal(t, models.BillIDFromString("dinner").Hex(), first["bill_id"])
}

func TestRedisStream(t *testing.T) {
	t.Run("adds one entry per event", func(t *testing.T) {
		fake := &fakeStream{}
		NewRedisStream(fake, "ledger-events", 1000, nil).Publish(context.Background(), sampleEvents())

		require.Len(t, fake.args, 2)
		assert.Equal(t, "ledger-events", fake.args[0].Stream)
		assert.Equal(t, int64(1000), fake.args[0].MaxLen)
		assert.True(t, fake.args[0].Approx)

		values := fake.args[0].Values.(map[string]interface{})
		assert.Equal(t, "BillCreated", values["kind"])

		var decoded models.Event
		require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &decoded))
		assert.Equal(t, "10000000", decoded.SharePrice)
	})

	t.Run("errors are logged not returned", func(t *testing.T) {
		var buf bytes.Buffer
		fake := &fakeStream{err: errors.New("connection refused")}
		NewRedisStream(fake, "ledger-events", 0, slog.New(slog.NewTextHandler(&buf, nil))).
			Publish(context.Background(), sampleEvents()[:1])

		assert.Len(t, fake.args, 1)
		assert.Zero(t, fake.args[0].MaxLen)
		assert.Contains(t, buf.String(), "connection refused")
	})
}
