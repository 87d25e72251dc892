package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a multi-location business account. Managed by external CRUD;
// the core only reads it to scope branches and products.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch is a physical sales location under a tenant. Code prefixes every
// invoice number issued for the branch.
type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Code      string    `gorm:"not null;uniqueIndex"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tenant *Tenant `gorm:"foreignKey:TenantID"`
}

func (Branch) TableName() string { return "branches" }
