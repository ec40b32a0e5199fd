package store

import (
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"flockscope/internal/config"
)

type SqlStore struct {
	db *gorm.DB
}

func NewSqlStore(dbConfig config.DBConfig) (*SqlStore, error) {
	db, err := gorm.Open(mysql.Open(dbConfig.DSN), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Second * time.Duration(dbConfig.MaxLifetime))

	return &SqlStore{db: db}, nil
}

func (s *SqlStore) AutoMigrate() error {
	return s.db.AutoMigrate(&Record{})
}

func (s *SqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SqlStore) Save(r *Record) error {
	return s.db.Save(r).Error
}

func (s *SqlStore) Get(id string) (*Record, error) {
	var r Record
	if err := s.db.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *SqlStore) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&Record{}).Error
}

func (s *SqlStore) List(start, limit int) ([]*Record, int, error) {
	var total int64
	if err := s.db.Model(&Record{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	records := make([]*Record, 0)
	q := s.db.Order("create_time DESC, id ASC").Offset(start)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, int(total), nil
}
