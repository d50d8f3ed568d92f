package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Kind names one of the moderated collections.
type Kind string

const (
	KindLostItem    Kind = "lostitem"
	KindMarketplace Kind = "marketplace"
	KindNote        Kind = "note"
)

// ParseKind accepts the path segments used by the admin routes.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lostitem", "lostfound", "lost-found":
		return KindLostItem, nil
	case "marketplace":
		return KindMarketplace, nil
	case "note", "notes":
		return KindNote, nil
	}
	return "", fmt.Errorf("unknown listing type %q", s)
}

// Label is the phrase used in notification messages.
func (k Kind) Label() string {
	switch k {
	case KindLostItem:
		return "lost item"
	case KindMarketplace:
		return "marketplace item"
	case KindNote:
		return "note"
	}
	return string(k)
}

// ListingBase holds the fields shared by every moderated submission.
type ListingBase struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	User        primitive.ObjectID `bson:"user" json:"user"`
	Status      Status             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`

	Owner *UserSummary `bson:"-" json:"owner,omitempty"`
}

func (b *ListingBase) Base() *ListingBase {
	return b
}

type LostItem struct {
	ListingBase `bson:",inline"`
	Location    string `bson:"location" json:"location"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
}

type MarketplaceItem struct {
	ListingBase `bson:",inline"`
	Price       float64 `bson:"price" json:"price"`
	Contact     string  `bson:"contact" json:"contact"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
}

type Note struct {
	ListingBase   `bson:",inline"`
	Subject       string `bson:"subject" json:"subject"`
	Semester      string `bson:"semester" json:"semester"`
	FileName      string `bson:"file_name" json:"fileName"`
	FileSize      int64  `bson:"file_size" json:"fileSize"`
	FileURL       string `bson:"file_url" json:"fileUrl"`
	ObjectKey     string `bson:"object_key,omitempty" json:"-"`
	DownloadCount int64  `bson:"download_count" json:"downloadCount"`
}
