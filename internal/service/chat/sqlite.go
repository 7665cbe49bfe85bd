package chat

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/modifai/backend/internal/model/chat"
)

// messageRecord is the sqlite row shape. The auto-incremented sequence
// preserves insertion order within a conversation.
type messageRecord struct {
	Seq             uint   `gorm:"primaryKey;autoIncrement"`
	MessageID       string `gorm:"size:36"`
	ConversationKey string `gorm:"index"`
	Sender          string
	Receiver        string
	Text            string
	Timestamp       int64
}

func (messageRecord) TableName() string { return "messages" }

// SQLiteStore persists chat history in a local sqlite database.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs the
// schema migration.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open chat database: %w", err)
	}
	if err := db.AutoMigrate(&messageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate chat database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append stores the message under its conversation key.
func (s *SQLiteStore) Append(ctx context.Context, message chat.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	record := messageRecord{
		MessageID:       message.ID,
		ConversationKey: chat.ConversationKey(message.Sender, message.Receiver),
		Sender:          message.Sender,
		Receiver:        message.Receiver,
		Text:            message.Text,
		Timestamp:       message.Timestamp,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// History returns the conversation's messages in insertion order.
func (s *SQLiteStore) History(ctx context.Context, user1, user2 string) ([]chat.Message, error) {
	var records []messageRecord
	key := chat.ConversationKey(user1, user2)

	err := s.db.WithContext(ctx).
		Where("conversation_key = ?", key).
		Order("seq").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := make([]chat.Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, chat.Message{
			ID:        r.MessageID,
			Sender:    r.Sender,
			Receiver:  r.Receiver,
			Text:      r.Text,
			Timestamp: r.Timestamp,
		})
	}
	return messages, nil
}
