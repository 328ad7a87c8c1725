package realtime

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeInitial      MessageType = "initial"
	TypePlantUpdate  MessageType = "plant_update"
	TypeOptimization MessageType = "optimization"
	TypeAlert        MessageType = "alert"
	TypeWelcome      MessageType = "welcome"
)

const (
	TopicPlantData = "plant_data"
	TopicAlerts    = "alerts"
)

// Topic is the subscription a message type is delivered to.
func (t MessageType) Topic() string {
	switch t {
	case TypeAlert, TypeWelcome:
		return TopicAlerts
	default:
		return TopicPlantData
	}
}

// Message is the envelope every dashboard frame uses.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`

	// Priority lets alert subscribers filter; it is not serialized.
	Priority int `json:"-"`
}

func NewMessage(t MessageType, data any) Message {
	return Message{Type: t, Timestamp: time.Now().UTC(), Data: data}
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// envelope is the wire form relayed across instances, where the unexported
// routing fields must survive.
type envelope struct {
	Type     MessageType     `json:"type"`
	Priority int             `json:"priority,omitempty"`
	Frame    json.RawMessage `json:"frame"`
}
