package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"ProjectKiosk/internal/content"
	"ProjectKiosk/internal/kiosk"
	"ProjectKiosk/internal/scenario"
)

var wsScenarios = fstest.MapFS{
	"hello.yaml": {Data: []byte(`
customer: Ada
requested: [SodaCan]
lines:
  - index: 0
    text: One soda.
    responses:
      - {text: Sell it, sale: true}
  - index: 1
    text: Thanks.
    end: true
`)},
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := kiosk.DefaultConfig()
	cfg.RevealCharsPerSecond = 0
	cfg.Scenarios = scenario.Config{Scenarios: []scenario.Entry{{Filename: "hello"}}}
	hub := NewHub(cfg, content.NewFileStore(wsScenarios))
	srv := httptest.NewServer(newMux(hub))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// waitFor reads JSON frames until one of type typ arrives.
func waitFor(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if f.Type == typ {
			return f
		}
	}
}

func TestWebsocketSaleFlow(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "")

	var hello sessionDTO
	if err := json.Unmarshal(waitFor(t, conn, msgSession).Payload, &hello); err != nil {
		t.Fatalf("session payload: %v", err)
	}
	if hello.SessionID == "" || hello.View.Phase != kiosk.PhaseIdle {
		t.Fatalf("unexpected hello %+v", hello)
	}

	if err := conn.WriteJSON(map[string]any{"type": inStart}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var customer kiosk.CustomerMsg
	if err := json.Unmarshal(waitFor(t, conn, kiosk.MsgCustomer).Payload, &customer); err != nil {
		t.Fatalf("customer payload: %v", err)
	}
	if customer.Name != "Ada" {
		t.Fatalf("customer = %q", customer.Name)
	}

	_ = conn.WriteJSON(map[string]any{"type": inChoose, "payload": map[string]int{"index": 0}})
	var errMsg errorDTO
	if err := json.Unmarshal(waitFor(t, conn, msgError).Payload, &errMsg); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if errMsg.For != inChoose {
		t.Errorf("error for %q, want choose", errMsg.For)
	}

	_ = conn.WriteJSON(map[string]any{"type": inCheckoutAdd, "payload": map[string]string{"item": "SodaCan"}})
	_ = conn.WriteJSON(map[string]any{"type": inChoose, "payload": map[string]int{"index": 0}})
	waitFor(t, conn, kiosk.MsgScenarioEnded)

	_ = conn.WriteJSON(map[string]any{"type": inScoreContinue})
	waitFor(t, conn, kiosk.MsgAllServed)
}

func TestWebsocketResumeSession(t *testing.T) {
	srv := newTestServer(t)
	first := dial(t, srv, "")
	var hello sessionDTO
	_ = json.Unmarshal(waitFor(t, first, msgSession).Payload, &hello)
	_ = first.WriteJSON(map[string]any{"type": inStart})
	waitFor(t, first, kiosk.MsgCustomer)
	first.Close()

	second := dial(t, srv, "?session="+hello.SessionID)
	var again sessionDTO
	if err := json.Unmarshal(waitFor(t, second, msgSession).Payload, &again); err != nil {
		t.Fatalf("session payload: %v", err)
	}
	if again.SessionID != hello.SessionID || again.View.Customer != "Ada" {
		t.Fatalf("expected to resume %s with Ada, got %+v", hello.SessionID, again)
	}
}

func TestWebsocketProtoFrames(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "?format=proto")

	start, err := structpb.NewStruct(map[string]any{"type": inStart})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	data, err := proto.Marshal(start)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if kind != websocket.BinaryMessage {
			t.Fatalf("expected binary frames, got %d", kind)
		}
		var st structpb.Struct
		if err := proto.Unmarshal(raw, &st); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if st.Fields["type"].GetStringValue() != kiosk.MsgCustomer {
			continue
		}
		name := st.Fields["payload"].GetStructValue().Fields["name"].GetStringValue()
		if name != "Ada" {
			t.Fatalf("customer name = %q", name)
		}
		return
	}
}

func TestHandleInboundRejectsBadPayloads(t *testing.T) {
	s := kiosk.NewSession(kiosk.DefaultConfig(), content.NewFileStore(wsScenarios))
	ctx := context.Background()
	if err := handleInbound(ctx, s, inboundMessage{Type: inChoose}); err == nil {
		t.Error("choose without payload should fail")
	}
	if err := handleInbound(ctx, s, inboundMessage{Type: "dance"}); err == nil {
		t.Error("unknown type should fail")
	}
	if err := handleInbound(ctx, s, inboundMessage{Type: inCheckoutAdd, Payload: json.RawMessage(`{"item":"Caviar"}`)}); err == nil {
		t.Error("unknown item should fail")
	}
}

func TestProtoToInbound(t *testing.T) {
	st, _ := structpb.NewStruct(map[string]any{
		"type":    inChoose,
		"payload": map[string]any{"index": 2},
	})
	data, _ := proto.Marshal(st)
	msg, err := protoToInbound(data)
	if err != nil {
		t.Fatalf("protoToInbound: %v", err)
	}
	var p chooseDTO
	if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Index != 2 {
		t.Fatalf("payload = %s (%v)", msg.Payload, err)
	}
	if _, err := protoToInbound([]byte{0xff}); err == nil {
		t.Error("garbage should not decode")
	}
}

func TestWebsocketTakeoverStopsOldScreen(t *testing.T) {
	srv := newTestServer(t)
	first := dial(t, srv, "")
	var hello sessionDTO
	_ = json.Unmarshal(waitFor(t, first, msgSession).Payload, &hello)

	second := dial(t, srv, "?session="+hello.SessionID)
	waitFor(t, second, msgSession)
	_ = second.WriteJSON(map[string]any{"type": inStart})
	waitFor(t, second, kiosk.MsgCustomer)

	// The replaced screen is told and closed, and never sees the new messages.
	_ = first.SetReadDeadline(time.Now().Add(5 * time.Second))
	sawError := false
	for {
		var f frame
		if err := first.ReadJSON(&f); err != nil {
			break
		}
		switch f.Type {
		case kiosk.MsgCustomer:
			t.Fatal("replaced screen drained a message meant for the new one")
		case msgError:
			sawError = true
		}
	}
	if !sawError {
		t.Error("replaced screen should be told it was taken over")
	}
}

func TestHubCleanupDetached(t *testing.T) {
	h := NewHub(kiosk.DefaultConfig(), content.NewFileStore(wsScenarios))
	stopped := false
	s, token := h.Attach("", func() { stopped = true })
	if !h.Owns(s.ID(), token) {
		t.Fatal("new connection should own its session")
	}
	_, other := h.Attach(s.ID(), func() {})
	if h.Owns(s.ID(), token) {
		t.Error("takeover should revoke the first connection")
	}
	if !stopped {
		t.Error("takeover should stop the first connection")
	}
	if _, ok := h.Drain(s.ID(), token); ok {
		t.Error("revoked connection must not drain the session")
	}
	if _, ok := h.Drain(s.ID(), other); !ok {
		t.Error("current connection should drain the session")
	}
	h.Detach(s.ID(), token)
	if h.CleanupDetached(0) != 0 {
		t.Error("session still driven by the second connection")
	}
	h.Detach(s.ID(), other)
	time.Sleep(time.Millisecond)
	if h.CleanupDetached(0) != 1 || h.Len() != 0 {
		t.Error("detached session should be removed")
	}
}
