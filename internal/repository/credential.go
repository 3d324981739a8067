package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comanda/comanda/internal/domain/credential"
	ierr "github.com/comanda/comanda/internal/errors"
	"github.com/comanda/comanda/internal/logger"
	"github.com/comanda/comanda/internal/postgres"
	"github.com/comanda/comanda/internal/types"
)

type credentialRow struct {
	ID         string `gorm:"primaryKey"`
	TenantID   string `gorm:"uniqueIndex;not null"`
	Ciphertext string `gorm:"not null"`
	Last4      string
	Sandbox    bool
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreatedBy  string
	UpdatedBy  string
}

func (credentialRow) TableName() string {
	return "credentials"
}

func toCredentialRow(c *credential.Credential) *credentialRow {
	return &credentialRow{
		ID:         c.ID,
		TenantID:   c.TenantID,
		Ciphertext: c.Ciphertext,
		Last4:      c.Last4,
		Sandbox:    c.Sandbox,
		Status:     c.Status.String(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		CreatedBy:  c.CreatedBy,
		UpdatedBy:  c.UpdatedBy,
	}
}

func (r *credentialRow) toDomain() *credential.Credential {
	return &credential.Credential{
		ID:         r.ID,
		Ciphertext: r.Ciphertext,
		Last4:      r.Last4,
		Sandbox:    r.Sandbox,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

type credentialRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewCredentialRepository creates a gorm-backed credential repository
func NewCredentialRepository(db postgres.IClient, log *logger.Logger) credential.Repository {
	return &credentialRepository{db: db, logger: log}
}

func (r *credentialRepository) Upsert(ctx context.Context, cred *credential.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	row := toCredentialRow(cred)
	err := r.db.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"id", "ciphertext", "last4", "sandbox", "status", "updated_at", "updated_by"}),
	}).Create(row).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to store credential").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *credentialRepository) GetByTenant(ctx context.Context, tenantID string) (*credential.Credential, error) {
	var row credentialRow
	err := r.db.DB(ctx).Where("tenant_id = ?", tenantID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("credential not found").
				WithHintf("No payment credential connected for tenant %s", tenantID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load credential").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *credentialRepository) DeleteByTenant(ctx context.Context, tenantID string) error {
	result := r.db.DB(ctx).Where("tenant_id = ?", tenantID).Delete(&credentialRow{})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to delete credential").
			Mark(ierr.ErrDatabase)
	}
	if result.RowsAffected == 0 {
		return ierr.NewError("credential not found").
			WithHintf("No payment credential connected for tenant %s", tenantID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
