package feed

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// NotifyChannel is the Postgres NOTIFY channel the row-change triggers
// publish to. One channel carries all tables; scopes filter client-side.
const NotifyChannel = "row_changes"

// Listener holds a dedicated connection in LISTEN mode and pushes decoded
// events into the Feed. It deliberately implements no reconnect or gap
// repair: when the connection drops the feed goes quiet and cached views
// self-heal through the next coarse invalidation or manual refresh.
type Listener struct {
	feed *Feed
	conn *pgx.Conn
	log  *zap.Logger
}

// NewListenerFromEnv opens the LISTEN connection using DATABASE_URL.
func NewListenerFromEnv(ctx context.Context, f *Feed, log *zap.Logger) (*Listener, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		return nil, errors.New("feed: DATABASE_URL environment variable is not set")
	}
	return NewListener(ctx, dsn, f, log)
}

func NewListener(ctx context.Context, dsn string, f *Feed, log *zap.Logger) (*Listener, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return &Listener{feed: f, conn: conn, log: log}, nil
}

// Run blocks consuming notifications until ctx is canceled or the connection
// fails. Errors are logged, never surfaced to users.
func (l *Listener) Run(ctx context.Context) error {
	defer func() {
		closeCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = l.conn.Close(closeCtx)
	}()

	for {
		n, err := l.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.log.Warn("feed listener stopped", zap.Error(err))
			return err
		}
		ev, err := Decode([]byte(n.Payload))
		if err != nil {
			l.log.Debug("feed: dropping malformed payload", zap.Error(err))
			continue
		}
		l.feed.Dispatch(ev)
	}
}
