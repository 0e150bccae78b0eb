package gateway

import "encoding/json"

// SubscribeMsg is the client request to filter the report stream to a set
// of symbols.
type SubscribeMsg struct {
	Type    string   `json:"type"` // "SUBSCRIBE"
	ReqID   string   `json:"req_id,omitempty"`
	Symbols []string `json:"symbols"`
}

// UnsubscribeMsg removes symbols from the client's filter.
type UnsubscribeMsg struct {
	Type    string   `json:"type"` // "UNSUBSCRIBE"
	Symbols []string `json:"symbols"`
}

// ErrorMsg is sent to the client when a request cannot be served.
type ErrorMsg struct {
	Type  string `json:"type"` // "ERROR"
	ReqID string `json:"req_id,omitempty"`
	Error string `json:"error"`
}

// SendJSON marshals v and queues it on the client's send channel.
// Drops the message if the client is backed up.
func SendJSON(c *Client, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// SendError queues an ErrorMsg on the client's send channel.
func SendError(c *Client, reqID, msg string) {
	SendJSON(c, ErrorMsg{Type: "ERROR", ReqID: reqID, Error: msg})
}
