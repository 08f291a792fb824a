package natsutil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	if err != nil {
		t.Fatal(err)
	}
	srv.Start()
	if !srv.ReadyForConnections(3 * time.Second) {
		t.Fatal("nats not ready")
	}
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

type summarizeReq struct {
	ObjectID string `json:"objectId"`
}

type summarizeResp struct {
	Devices int `json:"devices"`
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)
	if carrier.Get("missing") != "" || carrier.Keys() != nil {
		t.Fatal("nil header should read as empty")
	}
	carrier.Set("traceparent", "00-abc-def-01")
	carrier.Set("traceparent", "00-abc-def-02")
	carrier.Set("tracestate", "k=v")
	if got := carrier.Get("traceparent"); got != "00-abc-def-02" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if keys := carrier.Keys(); len(keys) != 2 {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestPublishSubscribe(t *testing.T) {
	nc := startTestNATS(t)
	ch := make(chan summarizeReq, 1)
	sub, err := Subscribe(nc, "installbom.test.pub", func(_ context.Context, r summarizeReq) { ch <- r })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	if err := nc.Publish("installbom.test.pub", []byte("{broken")); err != nil {
		t.Fatal(err)
	}
	if err := Publish(context.Background(), nc, "installbom.test.pub", summarizeReq{ObjectID: "obj-1"}); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-ch:
		if got.ObjectID != "obj-1" {
			t.Fatalf("got %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout")
	}
}

func TestRequestRespond(t *testing.T) {
	nc := startTestNATS(t)
	sub, err := Respond(nc, "installbom.test.rr", "workers", quiet(),
		func(_ context.Context, r summarizeReq) (summarizeResp, error) {
			if r.ObjectID == "missing" {
				return summarizeResp{}, errors.New("object not found")
			}
			return summarizeResp{Devices: len(r.ObjectID)}, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()
	ctx := context.Background()

	got, err := Request[summarizeReq, summarizeResp](ctx, nc, "installbom.test.rr", summarizeReq{ObjectID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Devices != 3 {
		t.Fatalf("got %+v", got)
	}

	_, err = Request[summarizeReq, summarizeResp](ctx, nc, "installbom.test.rr", summarizeReq{ObjectID: "missing"})
	var remote *RemoteError
	if !errors.As(err, &remote) || remote.Message != "object not found" {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	_, err = Request[string, summarizeResp](ctx, nc, "installbom.test.rr", "not an object")
	if !errors.As(err, &remote) {
		t.Fatalf("malformed request should be answered with an error, got %v", err)
	}
}

func TestRequest_Timeout(t *testing.T) {
	nc := startTestNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := Request[summarizeReq, summarizeResp](ctx, nc, "installbom.test.nobody", summarizeReq{})
	if err == nil {
		t.Fatal("expected error with no responder")
	}
}

func TestMarshalErrors(t *testing.T) {
	nc := startTestNATS(t)
	ctx := context.Background()
	if err := Publish(ctx, nc, "x", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if _, err := Request[chan int, summarizeResp](ctx, nc, "x", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}
