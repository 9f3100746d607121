package model

import (
	"time"

	"gorm.io/gorm"
)

type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusFailed  SyncStatus = "FAILED"
)

type History struct {
	gorm.Model
	Action   Action     `gorm:"not null;index"`
	Status   SyncStatus `gorm:"not null"`
	SrcPath  string     `gorm:"not null"`
	DstPath  string
	ErrMsg   string
	SyncedAt time.Time `gorm:"not null;index"`
}
