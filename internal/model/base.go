package model

import (
	"time"
)

// swagger:model
// 课程树中的节点一律硬删除，因此不嵌入 gorm.DeletedAt
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
