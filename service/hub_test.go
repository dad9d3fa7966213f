package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	ftdc "github.com/frozenpine/ftdc4go"
	"github.com/frozenpine/ftdc4go/codec"
)

func newHubRegistry(t testing.TB) *ftdc.Registry {
	t.Helper()

	registry := ftdc.NewRegistry()

	if err := registry.Register(ftdc.MustSchema(
		"ReqUserLogin",
		ftdc.StringField("UserID", 16),
		ftdc.StringField("Password", 16),
		ftdc.Int32Field("ClientIPPort"),
	)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	registry.Freeze()

	return registry
}

func loginFeed(t testing.TB, ports ...int32) *bytes.Buffer {
	t.Helper()

	enc := codec.NewRecordCodec(codec.Config{Strict: true})
	schema := ftdc.MustSchema(
		"ReqUserLogin",
		ftdc.StringField("UserID", 16),
		ftdc.StringField("Password", 16),
		ftdc.Int32Field("ClientIPPort"),
	)

	var buffer bytes.Buffer

	writer := NewFrameWriter(&buffer)

	for _, port := range ports {
		data, err := enc.Encode(schema, ftdc.Record{
			"UserID":       "107255",
			"Password":     "mypass",
			"ClientIPPort": port,
		})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		if err := writer.Write(&Frame{
			Schema: "ReqUserLogin",
			Body:   data,
		}); err != nil {
			t.Fatalf("Write frame failed: %v", err)
		}
	}

	return &buffer
}

func TestFeedHubPubSub(t *testing.T) {
	hub := NewFeedHub(
		context.Background(), newHubRegistry(t),
		codec.Config{Strict: true},
	)
	defer hub.Stop()

	ch, cancel, err := hub.Subscribe("ReqUserLogin", "pubsub-test")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	feed := loginFeed(t, 50100, 50101, 50102)

	if err := hub.Attach(context.Background(), feed); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	for _, want := range []int32{50100, 50101, 50102} {
		select {
		case record := <-ch:
			if record == nil {
				t.Fatal("nil record in flow")
			}

			port, err := record.GetInt32("ClientIPPort")
			if err != nil {
				t.Fatalf("GetInt32 failed: %v", err)
			}

			if port != want {
				t.Errorf("port mismatch: %d != %d", port, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no record for port %d", want)
		}
	}
}

func TestFeedHubUnknownSchema(t *testing.T) {
	hub := NewFeedHub(
		context.Background(), newHubRegistry(t),
		codec.Config{Strict: true},
	)
	defer hub.Stop()

	if _, _, err := hub.Subscribe("Ghost", "test"); !errors.Is(err, ftdc.ErrUnknownSchema) {
		t.Errorf("Subscribe: %v", err)
	}

	record := ftdc.Record{}
	if err := hub.Publish("Ghost", &record); !errors.Is(err, ftdc.ErrUnknownSchema) {
		t.Errorf("Publish: %v", err)
	}
}

func TestFeedHubDropsBadFrames(t *testing.T) {
	hub := NewFeedHub(
		context.Background(), newHubRegistry(t),
		codec.Config{Strict: true},
	)
	defer hub.Stop()

	ch, cancel, err := hub.Subscribe("ReqUserLogin", "droptest")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	feed := loginFeed(t, 50100)

	var buffer bytes.Buffer

	writer := NewFrameWriter(&buffer)

	// Runt image and unknown schema both drop without killing the pump.
	if err := writer.Write(&Frame{
		Schema: "ReqUserLogin",
		Body:   []byte{1, 2, 3},
	}); err != nil {
		t.Fatalf("Write frame failed: %v", err)
	}

	if err := writer.Write(&Frame{
		Schema: "Ghost",
		Body:   []byte{4, 5, 6},
	}); err != nil {
		t.Fatalf("Write frame failed: %v", err)
	}

	buffer.Write(feed.Bytes())

	if err := hub.Attach(context.Background(), &buffer); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	select {
	case record := <-ch:
		port, err := record.GetInt32("ClientIPPort")
		if err != nil || port != 50100 {
			t.Errorf("record mismatch: %v, %v", port, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("good frame never arrived")
	}

	_, decodeCnt, errCnt := hub.Statics().Snapshot()
	if decodeCnt != 1 || errCnt != 1 {
		t.Errorf("statics mismatch: decode %d, err %d", decodeCnt, errCnt)
	}
}

func TestFeedHubAttachAfterStop(t *testing.T) {
	hub := NewFeedHub(
		context.Background(), newHubRegistry(t),
		codec.Config{Strict: true},
	)

	hub.Stop()

	if err := hub.Attach(context.Background(), &bytes.Buffer{}); !errors.Is(err, ErrHubClosed) {
		t.Errorf("Attach after Stop: %v", err)
	}
}
