package models

import "time"

// Role is the closed set of application roles. Keeping it as a typed enum lets
// lookup tables (permissions, seed data) switch exhaustively on it.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleClient      Role = "client"
	RoleCommercial  Role = "commercial"
	RoleFinance     Role = "finance"
	RoleLivreur     Role = "livreur"
	RolePreparateur Role = "preparateur"
	RoleStock       Role = "stock"
)

// AllRoles lists every valid role, in a stable order.
var AllRoles = []Role{RoleAdmin, RoleClient, RoleCommercial, RoleFinance, RoleLivreur, RolePreparateur, RoleStock}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleCommercial, RoleFinance, RoleLivreur, RolePreparateur, RoleStock:
		return true
	}
	return false
}

// User & auth related models
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Email         string `gorm:"unique;not null;index" json:"email"`
	Password      string `gorm:"not null" json:"-"` // hashé (bcrypt)
	Nom           string `gorm:"index" json:"nom"`
	Prenom        string `gorm:"index" json:"prenom"`
	Telephone     string `json:"telephone"`
	Role          Role   `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	EmailVerified bool   `json:"emailVerified"`
	IsBlocked     bool   `json:"isBlocked"`
	BlockNote     string `json:"-"`

	// RefreshToken is the current opaque refresh token, rotated on each refresh.
	RefreshToken string `gorm:"index" json:"-"`
	// VerifyToken / ResetToken are one-shot tokens sent by email.
	ResetToken     string     `gorm:"index" json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	VerifyToken    string     `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"` // destinataire
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Type      string    `json:"type"` // ex: "order", "stock", "payment"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InternalMessage carries messages between users (ex: commercial -> preparateur).
type InternalMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index" json:"senderId"`
	Sender      User      `gorm:"foreignKey:SenderID" json:"-"`
	RecipientID uint      `gorm:"not null;index" json:"recipientId"`
	Recipient   User      `gorm:"foreignKey:RecipientID" json:"-"`
	Subject     string    `gorm:"not null" json:"subject"`
	Body        string    `json:"body"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
