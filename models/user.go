package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleGuest     Role = "guest"
)

// Roles lists every assignable role.
var Roles = []Role{RoleUser, RoleAdmin, RoleModerator, RoleGuest}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type Farm struct {
	Name      string   `bson:"name" json:"name"`
	Location  string   `bson:"location,omitempty" json:"location,omitempty"`
	SizeAcres float64  `bson:"sizeAcres,omitempty" json:"sizeAcres,omitempty"`
	Crops     []string `bson:"crops,omitempty" json:"crops,omitempty"`
}

type Achievement struct {
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	AwardedAt   time.Time `bson:"awardedAt" json:"awardedAt"`
}

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"passwordHash" json:"-"` // never expose
	Role         Role          `bson:"role" json:"role"`
	IsActive     bool          `bson:"isActive" json:"isActive"`
	IsVerified   bool          `bson:"isVerified" json:"isVerified"`

	// Token fields hold SHA-256 digests, never the raw value sent by mail.
	VerificationToken       string     `bson:"verificationToken,omitempty" json:"-"`
	VerificationTokenExpiry *time.Time `bson:"verificationTokenExpiry,omitempty" json:"-"`
	ResetPasswordToken      string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpiry     *time.Time `bson:"resetPasswordExpiry,omitempty" json:"-"`

	Wishlist     []bson.ObjectID `bson:"wishlist" json:"wishlist"`
	Farms        []Farm          `bson:"farms,omitempty" json:"farms,omitempty"`
	Achievements []Achievement   `bson:"achievements,omitempty" json:"achievements,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type RefreshToken struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     bson.ObjectID `bson:"userId"`
	TokenHash  string        `bson:"tokenHash"`
	ExpiresAt  time.Time     `bson:"expiresAt"`
	CreatedAt  time.Time     `bson:"createdAt"`
	RevokedAt  *time.Time    `bson:"revokedAt,omitempty"`
	ReplacedBy *string       `bson:"replacedBy,omitempty"`
}
