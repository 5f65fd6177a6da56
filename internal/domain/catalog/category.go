package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/domain/user"
)

// MaxDepth bounds the category hierarchy. Root categories have depth 0.
const MaxDepth = 5

// Category is a stable identity node in the hierarchy. Name, description and
// lifecycle status live on the current CategoryVersion, not here; the only
// state carried by the category row is its tree position and deletion marker.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CreatorID uuid.UUID  `gorm:"type:uuid;not null;column:creator_id" json:"creator_id"`
	Creator   *user.User `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`

	ParentID *uuid.UUID `gorm:"type:uuid;column:parent_id;index" json:"parent_id,omitempty"`
	Parent   *Category  `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"parent,omitempty"`

	Depth int `gorm:"not null;default:0;column:depth" json:"depth"`
	// TreePath is the materialized ancestor path ("/rootID/childID/"), used for
	// subtree queries with a prefix match.
	TreePath string `gorm:"not null;column:tree_path;index" json:"tree_path"`

	Deleted   bool       `gorm:"not null;default:false;column:deleted;index" json:"deleted"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

// ChildPath derives the materialized path for a child of this category.
func (c *Category) ChildPath(childID uuid.UUID) string {
	if c == nil {
		return fmt.Sprintf("/%s/", childID)
	}
	return fmt.Sprintf("%s%s/", c.TreePath, childID)
}

// RootPath is the materialized path of a root category.
func RootPath(id uuid.UUID) string {
	return fmt.Sprintf("/%s/", id)
}
