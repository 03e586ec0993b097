package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"dm-service/internal/auth"
	"dm-service/internal/observability"
	"dm-service/internal/presence"
)

const wsRoutingKey = "ws_events.dm"

// GatewayHandler upgrades client connections and binds them to the
// presence registry for the lifetime of the socket.
type GatewayHandler struct {
	registry *presence.Registry
	verifier *auth.Verifier
}

// NewGatewayHandler constructs a GatewayHandler.
func NewGatewayHandler(registry *presence.Registry, verifier *auth.Verifier) *GatewayHandler {
	return &GatewayHandler{registry: registry, verifier: verifier}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, upgrades and registers the connection, then keeps
// reading until the peer goes away so the close is observed promptly.
func (h *GatewayHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("dm-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	client := NewClient(conn, info)
	h.registry.Register(userID, client)

	// The request context dies with the handler; lifecycle events for
	// this socket must outlive it.
	connCtx := context.WithoutCancel(ctx)

	headers := observability.BuildHeaders(requestID, traceID)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(connCtx, wsRoutingKey, observability.NewWSEvent("ws_connect",
		observability.WSEventInfo{ConnID: info.ConnID}, identityOf(info)), headers)

	go func() {
		var closeReason string
		defer func() {
			// Unregister compares handles, so a close racing a newer
			// session for the same user never evicts the new entry.
			h.registry.Unregister(userID, client)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			_ = observability.PublishEvent(connCtx, wsRoutingKey, observability.NewWSEvent("ws_disconnect",
				observability.WSEventInfo{
					ConnID:     info.ConnID,
					DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
					Reason:     closeReason,
				}, identityOf(info)), headers)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
					_ = observability.PublishEvent(connCtx, wsRoutingKey, observability.NewWSEvent("ws_error",
						observability.WSEventInfo{
							ConnID:     info.ConnID,
							DurationMS: time.Since(info.ConnectedAt).Milliseconds(),
							Reason:     closeReason,
						}, identityOf(info)), headers)
				}
				return
			}
		}
	}()
}

func identityOf(info ConnInfo) observability.WSEventIdentity {
	return observability.WSEventIdentity{UserID: info.UserID, DeviceID: info.DeviceID, IP: info.IP}
}

func (h *GatewayHandler) validateToken(header string) (int, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid token")
	}
	identity, err := h.verifier.Validate(parts[1])
	if err != nil {
		return 0, err
	}
	return identity.ID, nil
}
