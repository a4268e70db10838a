package models

import (
	"predict-go/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库实例
var DB *gorm.DB

// InitDB 初始化数据库并迁移表结构
func InitDB(cfg *config.Config) error {
	db, err := Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open 打开SQLite数据库并自动迁移
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&DataFile{},
		&PredictionRun{},
	)
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}
