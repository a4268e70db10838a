package repository

import (
	"predict-go/internal/models"

	"gorm.io/gorm"
)

// DataFileRepository 数据文件数据访问层
type DataFileRepository struct {
	db *gorm.DB
}

// NewDataFileRepository 创建数据文件Repository
func NewDataFileRepository(db *gorm.DB) *DataFileRepository {
	return &DataFileRepository{db: db}
}

// GetByUserID 获取用户当前的数据文件
func (r *DataFileRepository) GetByUserID(userID uint) (*models.DataFile, error) {
	var file models.DataFile
	err := r.db.Where("user_id = ?", userID).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ReplaceForUser 在一个事务里删除用户旧的数据文件及其预测结果，并保存新文件
func (r *DataFileRepository) ReplaceForUser(file *models.DataFile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := clearUser(tx, file.UserID); err != nil {
			return err
		}
		return tx.Create(file).Error
	})
}

// ClearUser 删除用户的数据文件及其预测结果
func (r *DataFileRepository) ClearUser(userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return clearUser(tx, userID)
	})
}

func clearUser(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.PredictionRun{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&models.DataFile{}).Error
}
