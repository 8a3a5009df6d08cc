package notify

import (
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/realtime"
)

// RouterNotifier delivers notifications over the websocket router.
type RouterNotifier struct {
	Router *realtime.Router
}

var _ Notifier = (*RouterNotifier)(nil)
var _ Permissions = (*realtime.Router)(nil)

func (n *RouterNotifier) System(userID, title, body string) bool {
	return n.Router.NotifyUser(userID, realtime.Frame{
		Kind:  realtime.FrameNotification,
		Title: title,
		Body:  body,
	})
}

func (n *RouterNotifier) Toast(userID, title, body string) bool {
	return n.Router.NotifyUser(userID, realtime.Frame{
		Kind:  realtime.FrameToast,
		Title: title,
		Body:  body,
	})
}
