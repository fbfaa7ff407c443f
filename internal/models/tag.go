package models

import "time"

const DefaultTagColor = "#7C3AED"

type Tag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Label       string    `json:"label" gorm:"size:64;not null"`
	Value       string    `json:"value" gorm:"size:64;uniqueIndex;not null"`
	Color       string    `json:"color" gorm:"size:16"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateTagRequest struct {
	Label       string `json:"label" validate:"required,max=64"`
	Value       string `json:"value" validate:"required,max=64"`
	Description string `json:"description" validate:"max=280"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateTagRequest struct {
	Label       *string `json:"label" validate:"omitempty,max=64"`
	Value       *string `json:"value" validate:"omitempty,max=64"`
	Description *string `json:"description" validate:"omitempty,max=280"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}
