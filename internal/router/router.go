package router

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"dm-service/internal/models"
	"dm-service/internal/observability"
	"dm-service/internal/presence"
	"dm-service/internal/repositories"
)

// ErrInvalidRecipient rejects a self-send before any side effect occurs.
var ErrInvalidRecipient = errors.New("invalid recipient")

// PresenceReader is the registry surface the router needs: a liveness
// lookup valid for the scope of a single routing decision.
type PresenceReader interface {
	Lookup(userID int) (presence.Handle, bool)
}

// Router is the only path through which a message can be created. It
// persists first and pushes second, so a delivered message is always
// retrievable on the next fetch.
type Router struct {
	messages repositories.MessageRepository
	registry PresenceReader
}

// New constructs a Router.
func New(messages repositories.MessageRepository, registry PresenceReader) *Router {
	return &Router{messages: messages, registry: registry}
}

// Send persists the message and, if the receiver is online, pushes it over
// the receiver's connection. Send success is defined purely by successful
// persistence; the push is fire-and-forget.
func (rt *Router) Send(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error) {
	if senderID == receiverID {
		return models.Message{}, ErrInvalidRecipient
	}

	ctx, span := otel.Tracer("dm-service/router").Start(ctx, "router.send")
	defer span.End()

	msg, err := rt.messages.Append(ctx, senderID, receiverID, body)
	if err != nil {
		return models.Message{}, fmt.Errorf("append message: %w", err)
	}

	outcome := rt.push(receiverID, msg)
	span.SetAttributes(attribute.String("routing.outcome", outcome))
	observability.IncMessageRouted(outcome)
	return msg, nil
}

func (rt *Router) push(receiverID int, msg models.Message) string {
	handle, ok := rt.registry.Lookup(receiverID)
	if !ok {
		return observability.OutcomeStoredOnly
	}
	// The handle may have been invalidated between lookup and use; the
	// history store remains the recovery path, so the error is swallowed.
	if err := handle.Push(models.PushEvent{Type: models.EventMessage, Message: &msg}); err != nil {
		log.Printf("push to user %d failed: %v", receiverID, err)
		observability.IncPushFailure()
		return observability.OutcomePushFailed
	}
	return observability.OutcomePushed
}
