package observability

// EventEnvelope wraps every event published to the topic exchange.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// WSEventInfo describes a websocket lifecycle event.
type WSEventInfo struct {
	Event      string `json:"event"`
	ConnID     string `json:"conn_id"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason"`
}

// WSEventIdentity identifies the connection's user.
type WSEventIdentity struct {
	UserID   int    `json:"user_id"`
	DeviceID string `json:"device_id"`
	IP       string `json:"ip"`
}

type wsEventPayload struct {
	WS       WSEventInfo     `json:"ws"`
	Identity WSEventIdentity `json:"identity"`
}

// NewWSEvent builds the envelope for a websocket lifecycle event.
func NewWSEvent(name string, info WSEventInfo, identity WSEventIdentity) EventEnvelope {
	info.Event = name
	return EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload:   wsEventPayload{WS: info, Identity: identity},
	}
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
