package repository

import (
	"hotbackup/internal/logger"
	"hotbackup/internal/model"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *HistoryRepository) Save(result model.SyncResult) error {
	status := model.StatusSuccess
	errMsg := ""
	if result.Err != nil {
		status = model.StatusFailed
		errMsg = result.Err.Error()
	}

	history := model.History{
		Action:   result.Action,
		Status:   status,
		SrcPath:  result.SrcPath,
		DstPath:  result.DstPath,
		ErrMsg:   errMsg,
		SyncedAt: r.now(),
	}

	return r.db.Create(&history).Error
}

// Record lets the repository sit behind the engine; a failed insert is
// logged and otherwise ignored.
func (r *HistoryRepository) Record(result model.SyncResult) {
	if err := r.Save(result); err != nil {
		logger.Log.Warn("failed to save history",
			zap.String("path", result.SrcPath),
			zap.Error(err))
	}
}

type Stats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := r.db.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := r.db.Model(&model.History{}).
		Where("status = ?", model.StatusSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Order("synced_at desc, id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetFailed() ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Where("status = ?", model.StatusFailed).
		Order("synced_at desc, id desc").
		Find(&histories)

	return histories, result.Error
}
