package ws

import "encoding/json"

// Messages the hub itself puts on the wire. Relayed payloads are opaque;
// the hub only ever adds the sender id to them.
type gameStartedMessage struct {
	Type     string `json:"type"`
	Role     string `json:"role"`
	ClientID string `json:"clientId"`
}

type disconnectedMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
}

const (
	typeGameStarted  = "game_started"
	typeDisconnected = "disconnected"
)

// stampSender injects the sender's connection id into a relayed JSON
// object without touching the rest of the payload.
func stampSender(raw []byte, connID string) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]json.RawMessage{}
	}
	id, err := json.Marshal(connID)
	if err != nil {
		return nil, err
	}
	obj["sender"] = id
	return json.Marshal(obj)
}
