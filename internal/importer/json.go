package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/primeo/api/internal/models"
)

const exportVersion = 1

// exportUser carries the password hash that the API serialization of User
// deliberately drops. A snapshot restored elsewhere must keep logins working.
type exportUser struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

// Snapshot is the portable dump moved between environments.
type Snapshot struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Users      []exportUser     `json:"users"`
	Shops      []models.Shop    `json:"shops"`
	Products   []models.Product `json:"products"`
	Orders     []models.Order   `json:"orders"`
	Payments   []models.Payment `json:"payments"`
}

// Export writes the full snapshot as JSON. Orders embed their items.
func Export(db *gorm.DB, w io.Writer) error {
	snap := Snapshot{Version: exportVersion, ExportedAt: time.Now()}
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return fmt.Errorf("export users: %w", err)
	}
	for _, u := range users {
		snap.Users = append(snap.Users, exportUser{User: u, PasswordHash: u.Password})
	}
	if err := db.Find(&snap.Shops).Error; err != nil {
		return fmt.Errorf("export shops: %w", err)
	}
	if err := db.Find(&snap.Products).Error; err != nil {
		return fmt.Errorf("export products: %w", err)
	}
	if err := db.Preload("Items").Find(&snap.Orders).Error; err != nil {
		return fmt.Errorf("export orders: %w", err)
	}
	if err := db.Find(&snap.Payments).Error; err != nil {
		return fmt.Errorf("export payments: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import reads a snapshot and upserts it: users are matched by email, every
// other entity by primary key. Runs in one transaction, unlike CSV imports.
func Import(db *gorm.DB, r io.Reader) (Result, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Result{}, fmt.Errorf("lecture du snapshot: %w", err)
	}
	if snap.Version != exportVersion {
		return Result{}, fmt.Errorf("version de snapshot non supportée: %d", snap.Version)
	}
	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, eu := range snap.Users {
			u := eu.User
			u.Password = eu.PasswordHash
			var existing models.User
			err := tx.Where("email = ?", u.Email).First(&existing).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				if err := tx.Create(&u).Error; err != nil {
					return fmt.Errorf("user %s: %w", u.Email, err)
				}
				res.Created++
			case err != nil:
				return err
			default:
				u.ID = existing.ID
				if err := tx.Save(&u).Error; err != nil {
					return fmt.Errorf("user %s: %w", u.Email, err)
				}
				res.Updated++
			}
		}
		for _, s := range snap.Shops {
			created, err := upsertOne(tx, &models.Shop{}, s.ID, &s)
			if err != nil {
				return fmt.Errorf("shop %s: %w", s.Nom, err)
			}
			count(created, &res)
		}
		for _, p := range snap.Products {
			created, err := upsertOne(tx, &models.Product{}, p.ID, &p)
			if err != nil {
				return fmt.Errorf("product %s: %w", p.SKU, err)
			}
			count(created, &res)
		}
		for _, o := range snap.Orders {
			items := o.Items
			o.Items = nil
			created, err := upsertOne(tx, &models.Order{}, o.ID, &o)
			if err != nil {
				return fmt.Errorf("order %s: %w", o.Number, err)
			}
			count(created, &res)
			for _, it := range items {
				it.OrderID = o.ID
				created, err := upsertOne(tx, &models.OrderItem{}, it.ID, &it)
				if err != nil {
					return fmt.Errorf("order %s item %d: %w", o.Number, it.ID, err)
				}
				count(created, &res)
			}
		}
		for _, p := range snap.Payments {
			created, err := upsertOne(tx, &models.Payment{}, p.ID, &p)
			if err != nil {
				return fmt.Errorf("payment %d: %w", p.ID, err)
			}
			count(created, &res)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func count(created bool, res *Result) {
	if created {
		res.Created++
	} else {
		res.Updated++
	}
}

// upsertOne saves value under its explicit primary key, reporting whether a
// row was created rather than updated.
func upsertOne(tx *gorm.DB, probe any, id uint, value any) (bool, error) {
	if id == 0 {
		return true, tx.Create(value).Error
	}
	err := tx.First(probe, id).Error
	if err == gorm.ErrRecordNotFound {
		return true, tx.Create(value).Error
	}
	if err != nil {
		return false, err
	}
	return false, tx.Save(value).Error
}
