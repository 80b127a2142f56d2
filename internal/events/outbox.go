package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event describes a submission event to record.
type Event struct {
	DraftID snowflake.ID
	Type    string
	Payload map[string]any
}

// InvoiceEvent is the stored form of a submission event.
type InvoiceEvent struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	DraftID   snowflake.ID      `gorm:"not null;index"`
	EventType string            `gorm:"type:text;not null;index"`
	Payload   datatypes.JSONMap `gorm:"not null"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceEvent) TableName() string { return "invoice_events" }

// Outbox appends submission events to the invoice_events table.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Publish stores an event using the default database connection.
func (o *Outbox) Publish(ctx context.Context, event Event) error {
	if o == nil || o.db == nil || o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	if event.DraftID == 0 {
		return errors.New("invalid_draft_id")
	}
	name := strings.TrimSpace(event.Type)
	if name == "" {
		return errors.New("missing_event_type")
	}

	payload := datatypes.JSONMap{}
	for key, value := range event.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	return o.db.WithContext(ctx).Create(&InvoiceEvent{
		ID:        o.genID.Generate(),
		DraftID:   event.DraftID,
		EventType: name,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}).Error
}
