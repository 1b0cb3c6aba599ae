package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ProjectKiosk/internal/kiosk"
)

// flushInterval is how often queued session messages are written out.
const flushInterval = 50 * time.Millisecond

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type liveConn struct {
	conn     *websocket.Conn
	format   wireFormat
	sendTick *time.Ticker
	// replies carries connection-level messages from the read loop.
	replies chan kiosk.OutboundMessage
}

func serveWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format := parseWireFormat(query.Get("format"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	lc := &liveConn{
		conn:     conn,
		format:   format,
		sendTick: time.NewTicker(flushInterval),
		replies:  make(chan kiosk.OutboundMessage, 16),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, token := h.Attach(query.Get("session"), cancel)
	sessionID := session.ID()
	log.Printf("[ws] %s attached (format %d)", sessionID, format)

	lc.replies <- kiosk.OutboundMessage{Type: msgSession, Payload: sessionDTO{SessionID: sessionID, View: session.View()}}

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[ws] %s read: %v", sessionID, err)
				}
				return
			}
			var msg inboundMessage
			if msgType == websocket.BinaryMessage {
				msg, err = protoToInbound(data)
			} else {
				err = json.Unmarshal(data, &msg)
			}
			if err != nil {
				log.Printf("[ws] %s bad frame: %v", sessionID, err)
				lc.reply(msgError, errorDTO{Message: err.Error()})
				continue
			}
			if !h.Owns(sessionID, token) {
				lc.reply(msgError, errorDTO{For: msg.Type, Message: "session taken over by another screen"})
				return
			}
			if err := handleInbound(ctx, session, msg); err != nil {
				lc.reply(msgError, errorDTO{For: msg.Type, Message: err.Error()})
			}
			if msg.Type == inView {
				lc.reply(msgView, session.View())
			}
		}
	}()

	lc.writeLoop(ctx, func() ([]kiosk.OutboundMessage, bool) { return h.Drain(sessionID, token) })
	if !h.Owns(sessionID, token) {
		lc.send(kiosk.OutboundMessage{Type: msgError, Payload: errorDTO{Message: "session taken over by another screen"}})
	}

	lc.sendTick.Stop()
	conn.Close()
	h.Detach(sessionID, token)
	log.Printf("[ws] %s detached", sessionID)
}

func (lc *liveConn) reply(typ string, payload any) {
	select {
	case lc.replies <- kiosk.OutboundMessage{Type: typ, Payload: payload}:
	default:
		log.Printf("[ws] reply buffer full, dropping %s", typ)
	}
}

// writeLoop is the only writer on the connection. It stops once drain
// reports the connection no longer drives its session.
func (lc *liveConn) writeLoop(ctx context.Context, drain func() ([]kiosk.OutboundMessage, bool)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-lc.replies:
			if !lc.send(msg) {
				return
			}
		case <-lc.sendTick.C:
			msgs, ok := drain()
			if !ok {
				return
			}
			for _, msg := range msgs {
				if !lc.send(msg) {
					return
				}
			}
		}
	}
}

func (lc *liveConn) send(msg kiosk.OutboundMessage) bool {
	_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sendMessage(lc.conn, lc.format, msg); err != nil {
		log.Printf("send %s error: %v", msg.Type, err)
		return false
	}
	return true
}

// handleInbound applies one client message to the session. Rule violations
// come back as errors; the session has already queued a notice for them.
func handleInbound(ctx context.Context, s *kiosk.Session, msg inboundMessage) error {
	switch msg.Type {
	case inStart:
		return s.Begin(ctx)
	case inContinue:
		return s.Continue()
	case inChoose:
		var p chooseDTO
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return s.Choose(p.Index)
	case inGoBack:
		return s.GoBack()
	case inScan:
		return s.ScanID()
	case inCheckoutAdd, inCheckoutRemove:
		var p itemDTO
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		if msg.Type == inCheckoutAdd {
			return s.AddToCheckout(p.Item)
		}
		return s.RemoveFromCheckout(p.Item)
	case inRevealSkip:
		return s.SkipReveal()
	case inCardDismiss:
		return s.DismissCard()
	case inInboxOpen:
		s.OpenInbox()
		return nil
	case inScoreContinue:
		return s.NextCustomer(ctx)
	case inReset:
		return s.NewGame(ctx)
	case inView:
		return nil
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

var errNoPayload = errors.New("missing payload")

func decodePayload(msg inboundMessage, v any) error {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return fmt.Errorf("%s: %w", msg.Type, errNoPayload)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s payload: %w", msg.Type, err)
	}
	return nil
}
