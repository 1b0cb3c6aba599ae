package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"ProjectKiosk/internal/kiosk"
)

// wireFormat selects how frames are encoded on a connection.
type wireFormat int

const (
	formatJSON wireFormat = iota
	// formatProto sends each message as a binary google.protobuf.Struct
	// with "type" and "payload" fields.
	formatProto
)

func parseWireFormat(s string) wireFormat {
	if s == "proto" || s == "protobuf" {
		return formatProto
	}
	return formatJSON
}

// messageToProto converts an outbound message into a Struct. The payload goes
// through its JSON form so field names match the text protocol.
func messageToProto(msg kiosk.OutboundMessage) (*structpb.Struct, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msg.Type, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", msg.Type, err)
	}
	return structpb.NewStruct(fields)
}

// protoToInbound decodes a binary frame into an inbound message.
func protoToInbound(data []byte) (inboundMessage, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return inboundMessage{}, fmt.Errorf("protobuf unmarshal: %w", err)
	}
	var msg inboundMessage
	if v, ok := st.Fields["type"]; ok {
		msg.Type = v.GetStringValue()
	}
	if v, ok := st.Fields["payload"]; ok {
		raw, err := json.Marshal(v.AsInterface())
		if err != nil {
			return inboundMessage{}, fmt.Errorf("payload: %w", err)
		}
		msg.Payload = raw
	}
	if msg.Type == "" {
		return inboundMessage{}, fmt.Errorf("frame has no type")
	}
	return msg, nil
}

// sendMessage writes msg in the connection's format.
func sendMessage(conn *websocket.Conn, format wireFormat, msg kiosk.OutboundMessage) error {
	if format == formatJSON {
		return conn.WriteJSON(msg)
	}
	st, err := messageToProto(msg)
	if err != nil {
		return err
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
