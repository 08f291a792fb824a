// Package natsutil provides typed NATS publish/subscribe/request helpers
// with OpenTelemetry trace propagation.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// ErrorHeader carries a responder-side failure back to the requester.
const ErrorHeader = "Installbom-Error"

// RemoteError is a failure reported by a Respond handler.
type RemoteError struct {
	Subject string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("natsutil: %s: remote: %s", e.Subject, e.Message)
}

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes to the given subject.
// Trace context from ctx is injected into NATS message headers.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return nc.PublishMsg(msg)
}

// Subscribe registers a handler that deserializes JSON messages of type T.
// Trace context is extracted from NATS message headers and passed to the handler.
// Malformed messages are silently dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return // drop malformed messages
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
		handler(ctx, v)
	})
}

// Request sends a JSON-encoded request and decodes the response. The
// request is bounded by ctx when it has a deadline, else nats.DefaultTimeout.
// A responder failure comes back as *RemoteError.
func Request[Req, Resp any](ctx context.Context, nc *nats.Conn, subject string, req Req) (Resp, error) {
	var zero Resp
	data, err := json.Marshal(req)
	if err != nil {
		return zero, err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, nats.DefaultTimeout)
		defer cancel()
	}
	resp, err := nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		return zero, err
	}
	if e := resp.Header.Get(ErrorHeader); e != "" {
		return zero, &RemoteError{Subject: subject, Message: e}
	}
	var result Resp
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return zero, err
	}
	return result, nil
}

// Respond serves JSON request/reply on subject within a queue group.
// Handler errors and malformed requests are answered with ErrorHeader set.
func Respond[Req, Resp any](nc *nats.Conn, subject, queue string, log *slog.Logger, handler func(context.Context, Req) (Resp, error)) (*nats.Subscription, error) {
	if log == nil {
		log = slog.Default()
	}
	return nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		if msg.Reply == "" {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
		var req Req
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			respondErr(msg, fmt.Errorf("decode request: %w", err), log)
			return
		}
		resp, err := handler(ctx, req)
		if err != nil {
			respondErr(msg, err, log)
			return
		}
		data, err := json.Marshal(resp)
		if err != nil {
			respondErr(msg, fmt.Errorf("encode response: %w", err), log)
			return
		}
		if err := msg.Respond(data); err != nil {
			log.Error("natsutil: respond failed", "subject", subject, "error", err)
		}
	})
}

func respondErr(msg *nats.Msg, err error, log *slog.Logger) {
	reply := nats.NewMsg(msg.Reply)
	reply.Header.Set(ErrorHeader, err.Error())
	if rerr := msg.RespondMsg(reply); rerr != nil {
		log.Error("natsutil: respond failed", "subject", msg.Subject, "error", errors.Join(err, rerr))
	}
}
