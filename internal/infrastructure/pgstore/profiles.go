package pgstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
)

type ProfileRepository struct {
	db *gorm.DB
}

func (r *ProfileRepository) Upsert(ctx context.Context, email string, fields domain.Fields) (*domain.Profile, bool, error) {
	var (
		out      *domain.Profile
		inserted bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		create := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&profileModel{Email: email, CreatedAt: now, UpdatedAt: now})
		if create.Error != nil {
			return create.Error
		}
		inserted = create.RowsAffected == 1

		set := map[string]any{"updated_at": now}
		for column, v := range map[string]string{
			"name":      fields.Name,
			"phone":     fields.Phone,
			"address":   fields.Address,
			"education": fields.Education,
			"linkedin":  fields.LinkedIn,
			"image":     fields.Image,
		} {
			if v = strings.TrimSpace(v); v != "" {
				set[column] = v
			}
		}
		if err := tx.Model(&profileModel{}).Where("email = ?", email).Updates(set).Error; err != nil {
			return err
		}

		var m profileModel
		if err := tx.First(&m, "email = ?", email).Error; err != nil {
			return err
		}
		out = m.toDomain()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, inserted, nil
}

func (r *ProfileRepository) Get(ctx context.Context, email string) (*domain.Profile, error) {
	var m profileModel
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	var rows []profileModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Profile, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, email string, role domain.Role) (*domain.Profile, error) {
	res := r.db.WithContext(ctx).Model(&profileModel{}).
		Where("email = ?", email).
		Updates(map[string]any{"role": string(role), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, email)
}
