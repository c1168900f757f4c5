package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/trentd187/golf-trips/internal/models"
	"gorm.io/gorm"
)

// Identity is what a verified identity-provider token says about its holder.
type Identity struct {
	AuthID      string
	Email       string
	DisplayName string
	Role        models.UserRole
	// RoleClaimed is false when the token carried no role claim; the stored
	// role is then left alone.
	RoleClaimed bool
}

// SyncUser finds the user for an identity, creating the row on first contact
// and syncing the role when the token carries one.
func (r *Repository) SyncUser(ctx context.Context, id Identity) (models.User, error) {
	db := r.db.WithContext(ctx)

	var user models.User
	err := db.Where("auth_id = ?", id.AuthID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			AuthID:      id.AuthID,
			DisplayName: id.DisplayName,
			Email:       id.Email,
			Role:        id.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("create user: %w", err)
		}
		return user, nil
	case err != nil:
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if id.RoleClaimed && user.Role != id.Role {
		if err := db.Model(&user).Update("role", id.Role).Error; err != nil {
			return models.User{}, fmt.Errorf("sync user role: %w", err)
		}
		user.Role = id.Role
	}
	return user, nil
}
