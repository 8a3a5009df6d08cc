package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/port"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

func (r *PgChatRepository) GetOrCreateConversation(ctx context.Context, productID *string, buyerID, sellerID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}

	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, product_id::text, buyer_id::text, seller_id::text, created_at, last_message_at
		FROM conversations
		WHERE product_id IS NOT DISTINCT FROM $1::uuid AND buyer_id = $2::uuid AND seller_id = $3::uuid
	`, productID, buyerID, sellerID).Scan(&c.ID, &c.ProductID, &c.BuyerID, &c.SellerID, &c.CreatedAt, &c.LastMessageAt)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, err
	}

	// Insert; a concurrent first contact loses the unique race and re-reads.
	err = r.pool.QueryRow(ctx, `
		INSERT INTO conversations (product_id, buyer_id, seller_id)
		VALUES ($1::uuid, $2::uuid, $3::uuid)
		ON CONFLICT (product_id, buyer_id, seller_id) DO UPDATE SET buyer_id = EXCLUDED.buyer_id
		RETURNING id::text, product_id::text, buyer_id::text, seller_id::text, created_at, last_message_at
	`, productID, buyerID, sellerID).Scan(&c.ID, &c.ProductID, &c.BuyerID, &c.SellerID, &c.CreatedAt, &c.LastMessageAt)
	return c, err
}

func (r *PgChatRepository) GetConversation(ctx context.Context, id string) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, product_id::text, buyer_id::text, seller_id::text, created_at, last_message_at
		FROM conversations WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.ProductID, &c.BuyerID, &c.SellerID, &c.CreatedAt, &c.LastMessageAt)
	return c, err
}

func (r *PgChatRepository) ConversationSummary(ctx context.Context, id string) (chat.Conversation, string, error) {
	var (
		c     chat.Conversation
		title *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT c.id::text, c.product_id::text, c.buyer_id::text, c.seller_id::text, c.created_at, c.last_message_at, p.title
		FROM conversations c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.id = $1::uuid
	`, id).Scan(&c.ID, &c.ProductID, &c.BuyerID, &c.SellerID, &c.CreatedAt, &c.LastMessageAt, &title)
	if err != nil {
		return chat.Conversation{}, "", err
	}
	if title == nil {
		return c, "", nil
	}
	return c, *title, nil
}

func (r *PgChatRepository) ListHeadersForUser(ctx context.Context, userID string) ([]chat.Header, error) {
	// Secondary order on id only makes the order deterministic when two
	// conversations share a last_message_at.
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.product_id::text, c.buyer_id::text, c.seller_id::text, c.created_at, c.last_message_at,
		       p.id::text, p.title, p.price, p.images
		FROM conversations c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.buyer_id = $1::uuid OR c.seller_id = $1::uuid
		ORDER BY c.last_message_at DESC, c.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var headers []chat.Header
	for rows.Next() {
		var (
			h          chat.Header
			prodID     *string
			prodTitle  *string
			prodPrice  *float64
			prodImages []string
		)
		if err := rows.Scan(&h.ID, &h.ProductID, &h.BuyerID, &h.SellerID, &h.CreatedAt, &h.LastMessageAt,
			&prodID, &prodTitle, &prodPrice, &prodImages); err != nil {
			return nil, err
		}
		if prodID != nil {
			card := chat.ProductCard{ID: *prodID, Images: prodImages}
			if prodTitle != nil {
				card.Title = *prodTitle
			}
			if prodPrice != nil {
				card.Price = *prodPrice
			}
			h.Product = &card
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

func (r *PgChatRepository) MessagesByConversation(ctx context.Context, conversationID string) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, created_at, read_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.ReadAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgChatRepository) LatestMessage(ctx context.Context, conversationID string) (*chat.Message, error) {
	var m chat.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, created_at, read_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT 1
	`, conversationID).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.ReadAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgChatRepository) CountUnread(ctx context.Context, conversationID, viewerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages
		WHERE conversation_id = $1::uuid AND sender_id <> $2::uuid AND read_at IS NULL
	`, conversationID, viewerID).Scan(&count)
	return count, err
}

func (r *PgChatRepository) InsertMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4)
		RETURNING id::text, created_at
	`, m.ConversationID, m.SenderID, m.Content, m.CreatedAt).Scan(&m.ID, &m.CreatedAt)
	return m, err
}

func (r *PgChatRepository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conversations SET last_message_at = $2 WHERE id = $1::uuid
	`, conversationID, at)
	return err
}

func (r *PgChatRepository) MarkConversationRead(ctx context.Context, conversationID, viewerID string, at time.Time) error {
	// Affecting zero rows is the normal second-call outcome, not an error.
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET read_at = $3
		WHERE conversation_id = $1::uuid AND sender_id <> $2::uuid AND read_at IS NULL
	`, conversationID, viewerID, at)
	return err
}
