package models

import "time"

// Shop entity: the point of sale a client orders for.
type Shop struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"not null;index" json:"userId"` // FK vers User (propriétaire)
	User          User   `gorm:"foreignKey:UserID" json:"-"`
	Nom           string `gorm:"not null;index" json:"nom"` // Raison sociale ou enseigne
	NomCommercial string `json:"nomCommercial"`
	SIRET         string `gorm:"index" json:"siret"`
	TVAIntra      string `json:"tvaIntra"` // Numéro TVA intracommunautaire
	Ligne1        string `gorm:"not null" json:"ligne1"`
	Ligne2        string `json:"ligne2"`
	CodePostal    string `gorm:"not null" json:"codePostal"`
	Ville         string `gorm:"not null" json:"ville"`
	Telephone     string `json:"telephone"`
	// Consignes de livraison (accès, horaires, quai...)
	DeliveryNotes string    `json:"deliveryNotes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Supplier entity
type Supplier struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Nom       string `gorm:"not null;uniqueIndex" json:"nom"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse"`
	SIRET     string `gorm:"index" json:"siret"`
	TVAIntra  string `json:"tvaIntra"`
	// Conditions de paiement (ex: "30 jours fin de mois")
	PaymentTerms      string    `json:"paymentTerms"`
	DeliveryDelayDays int       `json:"deliveryDelayDays"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Setting is a typed key/value configuration row.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"unique;not null" json:"key"`
	Value     string    `json:"value"`
	Type      string    `json:"type"` // string, number, boolean, json
	Category  string    `gorm:"index" json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderDeadline defines the weekly cutoff after which orders slip to the next tour.
type OrderDeadline struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Weekday   int       `gorm:"not null;uniqueIndex" json:"weekday"` // 0 = dimanche
	Cutoff    string    `gorm:"not null" json:"cutoff"`              // "HH:MM"
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
