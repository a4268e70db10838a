package repository

import (
	"errors"

	"predict-go/internal/models"

	"gorm.io/gorm"
)

// PredictionRunRepository 预测结果数据访问层
type PredictionRunRepository struct {
	db *gorm.DB
}

// NewPredictionRunRepository 创建预测结果Repository
func NewPredictionRunRepository(db *gorm.DB) *PredictionRunRepository {
	return &PredictionRunRepository{db: db}
}

// ErrDataFileReplaced 预测结果对应的数据文件已不是用户当前的文件
var ErrDataFileReplaced = errors.New("数据文件已被替换")

// CreateForCurrentFile 在事务中确认数据文件仍属于该用户后保存预测结果
func (r *PredictionRunRepository) CreateForCurrentFile(run *models.PredictionRun) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.DataFile{}).
			Where("id = ? AND user_id = ?", run.DataFileID, run.UserID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrDataFileReplaced
		}
		return tx.Create(run).Error
	})
}

// GetLatestByDataFileID 获取数据文件最近一次的预测结果
func (r *PredictionRunRepository) GetLatestByDataFileID(dataFileID uint) (*models.PredictionRun, error) {
	var run models.PredictionRun
	err := r.db.Where("data_file_id = ?", dataFileID).Order("id DESC").First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// DeleteByDataFileID 作废数据文件的所有预测结果
func (r *PredictionRunRepository) DeleteByDataFileID(dataFileID uint) error {
	return r.db.Where("data_file_id = ?", dataFileID).Delete(&models.PredictionRun{}).Error
}
