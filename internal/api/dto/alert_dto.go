package dto

import "encoding/json"

// Alert stream frame types, modeled on the graphql-ws wire protocol
// the demo clients speak.
const (
	WSTypeConnectionInit = "connection_init"
	WSTypeConnectionAck  = "connection_ack"
	WSTypeStart          = "start"
	WSTypeStop           = "stop"
	WSTypeData           = "data"
	WSTypeError          = "error"
)

// WSMessage is one frame on the alert stream connection.
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartPayload carries the parameters of a subscription start frame.
type StartPayload struct {
	Threshold int `json:"threshold"`
}
