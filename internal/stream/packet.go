package stream

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Engine.IO packet types.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// Socket.IO packet types, carried inside an Engine.IO message.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioConnectError = '4'
)

type frameKind uint8

const (
	frameOther frameKind = iota
	frameOpen
	frameClose
	framePing
	framePong
	frameConnect
	frameDisconnect
	frameEvent
	frameConnectError
)

// frame is one decoded text frame. data is the JSON that follows the packet
// header, if any.
type frame struct {
	kind frameKind
	data []byte
}

var errEmptyFrame = errors.New("empty frame")

// parseFrame decodes an Engine.IO text frame and, for messages, the Socket.IO
// packet inside it. Packets for namespaces other than "/" come back as frameOther.
func parseFrame(b []byte) (frame, error) {
	if len(b) == 0 {
		return frame{}, errEmptyFrame
	}
	switch b[0] {
	case eioOpen:
		return frame{kind: frameOpen, data: b[1:]}, nil
	case eioClose:
		return frame{kind: frameClose}, nil
	case eioPing:
		return frame{kind: framePing, data: b[1:]}, nil
	case eioPong:
		return frame{kind: framePong, data: b[1:]}, nil
	case eioNoop:
		return frame{kind: frameOther}, nil
	case eioMessage:
	default:
		return frame{}, errors.Errorf("unknown engine.io packet type %q", b[0])
	}

	b = b[1:]
	if len(b) == 0 {
		return frame{}, errors.New("engine.io message without socket.io packet")
	}
	t := b[0]
	b = b[1:]

	// Optional namespace, terminated by a comma.
	if len(b) > 0 && b[0] == '/' {
		end := 0
		for end < len(b) && b[end] != ',' {
			end++
		}
		nsp := string(b[:end])
		if end < len(b) {
			end++
		}
		b = b[end:]
		if nsp != "/" {
			return frame{kind: frameOther}, nil
		}
	}
	// Optional ack id.
	for len(b) > 0 && b[0] >= '0' && b[0] <= '9' {
		b = b[1:]
	}

	switch t {
	case sioConnect:
		return frame{kind: frameConnect, data: b}, nil
	case sioDisconnect:
		return frame{kind: frameDisconnect}, nil
	case sioEvent:
		return frame{kind: frameEvent, data: b}, nil
	case sioConnectError:
		return frame{kind: frameConnectError, data: b}, nil
	default:
		return frame{kind: frameOther}, nil
	}
}

// connectPacket is the Socket.IO connect request for the default namespace.
var connectPacket = []byte{eioMessage, sioConnect}

// pongPacket answers a server ping.
var pongPacket = []byte{eioPong}

// openInfo is the Engine.IO handshake payload.
type openInfo struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int64    `json:"pingInterval"`
	PingTimeout  int64    `json:"pingTimeout"`
	MaxPayload   int64    `json:"maxPayload"`
}

// Liveness returns how long the client waits for any frame before treating the
// connection as dead: one ping interval plus the ping timeout.
func (o openInfo) Liveness() time.Duration {
	return time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
}

func parseOpen(data []byte) (openInfo, error) {
	var o openInfo
	if err := json.Unmarshal(data, &o); err != nil {
		return openInfo{}, errors.Wrap(err, "decode open packet")
	}
	if o.SID == "" {
		return openInfo{}, errors.New("open packet without sid")
	}
	return o, nil
}

// parseEvent splits an event payload into its name and arguments.
func parseEvent(data []byte) (string, []json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, errors.Wrap(err, "decode event")
	}
	if len(parts) == 0 {
		return "", nil, errors.New("event without name")
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, errors.Wrap(err, "decode event name")
	}
	return name, parts[1:], nil
}

// connectError extracts the message from a connect error payload.
func connectError(data []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return errors.Errorf("connect refused: %s", body.Message)
	}
	return errors.Errorf("connect refused: %s", strconv.Quote(string(data)))
}
