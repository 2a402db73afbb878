package models

type SubCategory struct {
	ID         string   `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name       string   `json:"name" gorm:"type:varchar(255);not null"`
	CategoryID string   `json:"categoryId" gorm:"type:varchar(64);not null;index"`
	Category   Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}
