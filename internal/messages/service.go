package messages

import (
	"context"
	"strings"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/shared/apperr"
	"backend-numeneon/internal/stream"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var messageColumns = []string{
	"id", "sender_id", "receiver_id", "content",
	"COALESCE(reply_to_story::text, '')", "is_read", "created_at",
}

type Service struct {
	db     db.Querier
	events Publisher
}

func NewService(db db.Querier, events Publisher) *Service {
	return &Service{db: db, events: events}
}

func (s *Service) Send(ctx context.Context, senderID string, in SendInput) (Message, error) {
	msg := Message{
		ID:           uuid.NewString(),
		SenderID:     senderID,
		ReceiverID:   strings.TrimSpace(in.ReceiverID),
		Content:      strings.TrimSpace(in.Content),
		ReplyToStory: strings.TrimSpace(in.ReplyToStory),
	}
	if msg.Content == "" {
		return Message{}, apperr.Invalid("content required")
	}
	if msg.ReceiverID == "" || msg.ReceiverID == senderID {
		return Message{}, apperr.Invalid("receiver_id must be another user")
	}

	var replyTo any
	if msg.ReplyToStory != "" {
		replyTo = msg.ReplyToStory
	}
	query, args, err := db.SqBuilder.
		Insert("messages").
		Columns("id", "sender_id", "receiver_id", "content", "reply_to_story").
		Values(msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, replyTo).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return Message{}, db.ErrBadQuery
	}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&msg.CreatedAt); err != nil {
		return Message{}, apperr.FromDB(err, "recipient")
	}

	s.publish(msg.ReceiverID, "new_message", msg)
	return msg, nil
}

// Conversation returns the messages exchanged by two users, oldest first.
func (s *Service) Conversation(ctx context.Context, userID, otherID string) ([]Message, error) {
	return s.query(ctx, db.SqBuilder.
		Select(messageColumns...).
		From("messages").
		Where(sq.Or{
			sq.Eq{"sender_id": userID, "receiver_id": otherID},
			sq.Eq{"sender_id": otherID, "receiver_id": userID},
		}).
		OrderBy("created_at ASC"))
}

func (s *Service) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	msgs, err := s.query(ctx, db.SqBuilder.
		Select(messageColumns...).
		From("messages").
		Where(sq.Or{sq.Eq{"sender_id": userID}, sq.Eq{"receiver_id": userID}}).
		OrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}

	convs := BuildConversations(userID, msgs)
	if len(convs) == 0 {
		return convs, nil
	}
	ids := make([]string, len(convs))
	for i, c := range convs {
		ids[i] = c.UserID
	}
	people, err := s.participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		if p, ok := people[convs[i].UserID]; ok {
			convs[i].User = &p
		}
	}
	return convs, nil
}

// MarkRead flags one message as read. Only its receiver may do so.
func (s *Service) MarkRead(ctx context.Context, messageID, userID string) error {
	query, args, err := db.SqBuilder.
		Select("sender_id", "receiver_id").
		From("messages").
		Where(sq.Eq{"id": messageID}).
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	var senderID, receiverID string
	if err := s.db.QueryRow(ctx, query, args...).Scan(&senderID, &receiverID); err != nil {
		return apperr.FromDB(err, "message")
	}
	if receiverID != userID {
		return apperr.Forbidden("only the receiver can mark a message read")
	}

	query, args, err = db.SqBuilder.
		Update("messages").
		Set("is_read", true).
		Where(sq.Eq{"id": messageID}).
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return err
	}
	s.publish(senderID, "message_read", map[string]string{"id": messageID})
	return nil
}

// MarkAllRead flags everything otherID sent to userID as read and reports
// how many messages changed.
func (s *Service) MarkAllRead(ctx context.Context, userID, otherID string) (int64, error) {
	query, args, err := db.SqBuilder.
		Update("messages").
		Set("is_read", true).
		Where(sq.Eq{"receiver_id": userID, "sender_id": otherID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, db.ErrBadQuery
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	query, args, err := db.SqBuilder.
		Select("count(*)").
		From("messages").
		Where(sq.Eq{"receiver_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, db.ErrBadQuery
	}
	var n int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Service) query(ctx context.Context, b sq.SelectBuilder) ([]Message, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.ReplyToStory, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *Service) participants(ctx context.Context, ids []string) (map[string]Participant, error) {
	query, args, err := db.SqBuilder.
		Select("id", "username", "first_name", "last_name", "avatar_url").
		From("users").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := map[string]Participant{}
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.Username, &p.FirstName, &p.LastName, &p.Avatar); err != nil {
			return nil, err
		}
		people[p.ID] = p
	}
	return people, rows.Err()
}

func (s *Service) publish(userID, kind string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(userID, stream.Event{Type: kind, Data: data})
}
