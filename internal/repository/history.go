package repository

import (
	"syncd/internal/db"
	"syncd/internal/logger"
	"syncd/internal/model"

	"go.uber.org/zap"
)

type HistoryRepository struct{}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Save(run model.SyncRun) error {
	errMsg := ""
	if run.Err != nil {
		errMsg = run.Err.Error()
	}

	history := model.History{
		RunID:      run.ID,
		Reason:     run.Reason,
		Status:     run.Status(),
		ErrMsg:     errMsg,
		StartedAt:  run.StartedAt,
		DurationMs: run.Duration.Milliseconds(),
	}

	return db.DB.Create(&history).Error
}

// RecordSync stores run, logging instead of failing so history problems
// never interrupt syncing.
func (r *HistoryRepository) RecordSync(run model.SyncRun) {
	if err := r.Save(run); err != nil {
		logger.Log.Warn("failed to save history",
			zap.String("run_id", run.ID),
			zap.Error(err))
	}
}

func (r *HistoryRepository) GetStats() (model.HistoryStats, error) {
	var stats model.HistoryStats
	if err := db.DB.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.History{}).
		Where("status = ?", model.StatusSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Order("started_at desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetFailed(limit int) ([]model.History, error) {
	var histories []model.History
	result := db.DB.
		Where("status = ?", model.StatusFailed).
		Order("started_at desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}
