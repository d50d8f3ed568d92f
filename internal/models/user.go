package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	RegdNo        string             `bson:"regd_no" json:"regdNo"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	Password      string             `bson:"password,omitempty" json:"-"`
	Role          string             `bson:"role" json:"role"`
	IsVerified    bool               `bson:"is_verified" json:"isVerified"`
	OTP           string             `bson:"otp,omitempty" json:"-"`
	OTPExpiry     time.Time          `bson:"otp_expiry,omitempty" json:"-"`
	PasswordReset bool               `bson:"password_reset" json:"-"` // stored OTP was issued by forgot-password
	JoinDate      time.Time          `bson:"join_date" json:"joinDate"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the public view of a user attached to listings.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// UserSummary is never persisted.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone,omitempty"`
}

// OTPConsumption describes what happens to a user record when a stored OTP is
// consumed. The OTP fields are always cleared.
type OTPConsumption struct {
	MarkVerified bool
	PasswordHash string
}
