// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberStatusActive is the status given to members created by a registration form.
const MemberStatusActive = "Active"

// Member is a person who has joined the fellowship.
//
// NOTE:
//   - Email is unique across all members and compared exactly as stored
//     (only surrounding whitespace is trimmed).
//   - NameCI is the folded name used for search ordering.
type Member struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	NameCI           string             `bson:"name_ci" json:"-"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	Department       string             `bson:"department" json:"department"`
	Address          Address            `bson:"address" json:"address"`
	EmergencyContact EmergencyContact   `bson:"emergency_contact" json:"emergency_contact"`
	Notes            string             `bson:"notes" json:"notes"`
	Status           string             `bson:"status" json:"status"`

	JoinDate  time.Time `bson:"join_date" json:"join_date"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Address is a member's postal address. All fields are optional.
type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zip_code" json:"zip_code"`
}

// EmergencyContact is who to call for a member. All fields are optional.
type EmergencyContact struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	Relationship string `bson:"relationship" json:"relationship"`
}
