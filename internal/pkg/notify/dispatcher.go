package notify

import (
	"context"

	"go.uber.org/zap"

	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
)

// Action is the outcome of a dispatch decision for one recipient.
type Action int

const (
	// ActionNone means the recipient gets nothing.
	ActionNone Action = iota
	// ActionSystem means a system-level notification is shown.
	ActionSystem
	// ActionToast means an in-app toast is shown instead.
	ActionToast
)

// Title is the fixed headline used for both delivery channels.
const Title = "הודעה חדשה"

// FallbackProductName stands in when the conversation has no resolvable
// product title.
const FallbackProductName = "מוצר"

// MessageEvent carries the fields of a freshly persisted message that the
// dispatcher needs.
type MessageEvent struct {
	MessageID      string
	ConversationID string
	SenderID       string
	Content        string
}

// ConversationSource resolves a conversation together with its product title
// in a single lookup.
type ConversationSource interface {
	ConversationSummary(ctx context.Context, conversationID string) (chat.Conversation, string, error)
}

// Permissions reports whether a user has granted system notifications.
type Permissions interface {
	NotificationsGranted(userID string) bool
}

// Notifier delivers the decided notification. Both methods report whether the
// recipient was reachable.
type Notifier interface {
	System(userID, title, body string) bool
	Toast(userID, title, body string) bool
}

// Dispatcher decides, per recipient, how a new-message event surfaces.
type Dispatcher struct {
	Conversations ConversationSource
	Permissions   Permissions
	Notifier      Notifier
	Log           *zap.Logger
}

func NewDispatcher(src ConversationSource, perms Permissions, n Notifier, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{Conversations: src, Permissions: perms, Notifier: n, Log: log}
}

// Decide runs the dispatch decision for a single viewer. Senders never get
// notified about their own messages, and a viewer outside the conversation
// gets nothing. Lookup failures degrade to silence rather than a misdirected
// notification.
func (d *Dispatcher) Decide(ctx context.Context, viewerID string, ev MessageEvent) Action {
	if viewerID == ev.SenderID {
		return ActionNone
	}

	conv, title, err := d.Conversations.ConversationSummary(ctx, ev.ConversationID)
	if err != nil {
		d.Log.Debug("notify: conversation lookup failed",
			zap.String("conversation_id", ev.ConversationID), zap.Error(err))
		return ActionNone
	}
	if !conv.HasParticipant(viewerID) {
		return ActionNone
	}

	if d.Permissions.NotificationsGranted(viewerID) {
		if title == "" {
			title = FallbackProductName
		}
		d.Notifier.System(viewerID, Title+": "+title, ev.Content)
		return ActionSystem
	}

	d.Notifier.Toast(viewerID, Title, ev.Content)
	return ActionToast
}

// NotifyParticipants resolves the conversation once and runs the decision for
// both sides of it.
func (d *Dispatcher) NotifyParticipants(ctx context.Context, ev MessageEvent) {
	conv, _, err := d.Conversations.ConversationSummary(ctx, ev.ConversationID)
	if err != nil {
		d.Log.Debug("notify: conversation lookup failed",
			zap.String("conversation_id", ev.ConversationID), zap.Error(err))
		return
	}
	for _, viewerID := range []string{conv.BuyerID, conv.SellerID} {
		d.Decide(ctx, viewerID, ev)
	}
}
