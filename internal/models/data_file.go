package models

import (
	"time"
)

// DataFile 用户当前上传的数据集，每个用户最多一条
type DataFile struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	FileContent []byte    `gorm:"type:blob;not null" json:"-"`
	FileSize    int       `gorm:"not null" json:"file_size"`
	Encoding    string    `gorm:"size:20;default:'utf-8'" json:"encoding"`
	RowCount    int       `gorm:"not null" json:"row_count"`
	ColumnCount int       `gorm:"not null" json:"column_count"`
	UserID      uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (DataFile) TableName() string {
	return "data_files"
}
