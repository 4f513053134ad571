package remote

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/obsview/internal/dynamo"
)

type echoStepper struct {
	calls int
	fail  error
}

func (s *echoStepper) Step(obs dynamo.Observation, a dynamo.Action) (dynamo.Observation, float64, bool, error) {
	s.calls++
	if s.fail != nil {
		return dynamo.Observation{}, 0, false, s.fail
	}
	next := dynamo.Observation{Wp1X: obs.Wp1X + a.Throttle, Wp1Y: obs.Wp1Y + a.Steering, VelX: obs.VelX, VelY: obs.VelY}
	return next, 0.25, s.calls >= 3, nil
}

func websocketURL(t *testing.T, base string) string {
	t.Helper()
	return "ws" + strings.TrimPrefix(base, "http")
}

func startServer(t *testing.T, stepper *echoStepper) string {
	t.Helper()
	handler := NewHandler(HandlerConfig{NewStepper: func() dynamo.Stepper { return stepper }})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return websocketURL(t, server.URL)
}

func TestCodecLayout(t *testing.T) {
	obs := dynamo.Observation{Wp1X: 0.5, Wp1Y: -0.25, VelX: 1, VelY: -1}
	req := EncodeRequest(obs, dynamo.Action{Throttle: 0.75, Steering: -0.5})
	if len(req) != RequestSize || RequestSize != 24 {
		t.Fatalf("request size = %d", len(req))
	}
	gotObs, gotAction, err := DecodeRequest(req)
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if gotObs != obs || gotAction.Throttle != 0.75 || gotAction.Steering != -0.5 {
		t.Fatalf("decode request = %+v %+v", gotObs, gotAction)
	}

	rep := EncodeReply(obs, 0.125, true)
	if len(rep) != ReplySize || ReplySize != 21 {
		t.Fatalf("reply size = %d", len(rep))
	}
	if rep[20] != 1 {
		t.Fatalf("done byte = %d", rep[20])
	}
	// little-endian float32 0.5 is 0x3f000000
	if rep[0] != 0 || rep[3] != 0x3f {
		t.Fatalf("unexpected byte order: % x", rep[:4])
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"short reply", func() error { _, _, _, err := DecodeReply(make([]byte, 20)); return err }, ErrShortReply},
		{"long reply", func() error { _, _, _, err := DecodeReply(make([]byte, 22)); return err }, ErrShortReply},
		{"short request", func() error { _, _, err := DecodeRequest(make([]byte, 23)); return err }, ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClientStepsThroughServer(t *testing.T) {
	stepper := &echoStepper{}
	url := startServer(t, stepper)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, url, ClientConfig{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	obs := dynamo.Observation{Wp1X: 0.5, Wp1Y: 0.5}
	var done bool
	for i := 0; i < 3; i++ {
		var rot float64
		obs, rot, done, err = client.Step(obs, dynamo.Action{Throttle: 0.25, Steering: -0.125})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if rot != 0.25 {
			t.Fatalf("rotation = %v", rot)
		}
	}
	if !done {
		t.Fatalf("expected done after third step")
	}
	if obs.Wp1X != 1.25 || obs.Wp1Y != 0.125 {
		t.Fatalf("obs = %+v", obs)
	}
}

func TestServerClosesOnStepperError(t *testing.T) {
	stepper := &echoStepper{fail: errors.New("boom")}
	url := startServer(t, stepper)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.WriteMessage(websocket.BinaryMessage, EncodeRequest(dynamo.Observation{}, dynamo.Action{})); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseInternalServerErr) {
		t.Fatalf("expected internal error close, got %v", err)
	}
}

func TestClientReportsServerFault(t *testing.T) {
	url := startServer(t, &echoStepper{fail: errors.New("boom")})

	client, err := Dial(context.Background(), url, ClientConfig{Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if _, _, _, err := client.Step(dynamo.Observation{}, dynamo.Action{}); err == nil {
		t.Fatalf("expected step error")
	}
}

func TestServerRejectsTextFrames(t *testing.T) {
	url := startServer(t, &echoStepper{})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseUnsupportedData) {
		t.Fatalf("expected unsupported data close, got %v", err)
	}
}
