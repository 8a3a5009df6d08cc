package task

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	qport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/queue/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/notify"
)

// RegisterNotifyMessageTask binds the new-message notification handler to the
// provided server. Delivery is at-most-once: the handler always reports
// success so a failed or skipped notification is never replayed at the
// recipient.
func RegisterNotifyMessageTask(srv qport.Server, dispatcher *notify.Dispatcher, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	srv.Register(usecase.NewMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.NewMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			log.Debug("notify task: dropping malformed payload", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		dispatcher.NotifyParticipants(ctx, notify.MessageEvent{
			MessageID:      p.MessageID,
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			Content:        p.Content,
		})
		return nil
	})
}
