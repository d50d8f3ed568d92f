package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotiLostFound   NotificationType = "lost-found"
	NotiNotes       NotificationType = "notes"
	NotiUser        NotificationType = "user"
	NotiApproval    NotificationType = "approval"
	NotiRejection   NotificationType = "rejection"
	NotiSystem      NotificationType = "system"
	NotiMarketplace NotificationType = "marketplace"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotiLostFound, NotiNotes, NotiUser, NotiApproval, NotiRejection, NotiSystem, NotiMarketplace:
		return true
	}
	return false
}

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID  `bson:"user" json:"user"`
	Message   string              `bson:"message" json:"message"`
	Type      NotificationType    `bson:"type" json:"type"`
	Read      bool                `bson:"read" json:"read"`
	ItemID    *primitive.ObjectID `bson:"item_id,omitempty" json:"itemId,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updatedAt"`
}
