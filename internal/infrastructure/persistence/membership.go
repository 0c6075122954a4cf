package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	rankingapp "github.com/peerrank/backend/internal/application/ranking"
	"github.com/peerrank/backend/internal/infrastructure/persistence/models"
)

// GormMembershipDirectory answers group-membership questions from the
// member_shares table. A user belongs to a group if any stage declares
// a share for them in that group.
type GormMembershipDirectory struct {
	db *gorm.DB
}

// NewGormMembershipDirectory creates a new GormMembershipDirectory
func NewGormMembershipDirectory(db *gorm.DB) *GormMembershipDirectory {
	return &GormMembershipDirectory{db: db}
}

// IsGroupMember reports whether the user has a declared share in the group
func (d *GormMembershipDirectory) IsGroupMember(ctx context.Context, groupID uuid.UUID, userID string) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).
		Model(&models.MemberShareModel{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormMembershipDirectory implements the Eligibility port
var _ rankingapp.Eligibility = (*GormMembershipDirectory)(nil)
