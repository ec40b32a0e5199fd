package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flockscope/internal/analysis"
	"flockscope/internal/config"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ResultData is the persisted form of an analysis result.
type ResultData analysis.Result

func (d ResultData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *ResultData) Scan(value any) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, d)
}

type Record struct {
	Id            string      `json:"analysis_id" gorm:"primaryKey;size:64"`
	Status        Status      `json:"status" gorm:"size:16"`
	Input         string      `json:"input" gorm:"NOT NULL"`
	Output        string      `json:"output"`
	ObjectPath    string      `json:"object_path,omitempty"`
	FPSSample     int         `json:"fps_sample"`
	ConfThreshold float32     `json:"conf_threshold"`
	Error         string      `json:"error,omitempty" gorm:"type:text"`
	CreateTime    time.Time   `json:"create_time" gorm:"datetime;autoCreateTime"`
	Result        *ResultData `json:"data,omitempty" gorm:"type:json"`
}

func (Record) TableName() string {
	return "analysis_records"
}

// Store persists analysis records. Get returns nil, nil for an unknown id.
type Store interface {
	Save(r *Record) error
	Get(id string) (*Record, error)
	List(start, limit int) ([]*Record, int, error)
	Delete(id string) error
	Close() error
}

func Open(conf *config.Config) (Store, error) {
	switch conf.Store.Driver {
	case config.StoreBadger, "":
		return NewBadgerStore(conf.DataDir())
	case config.StoreMySQL:
		return NewSqlStore(conf.Store.DB)
	}
	return nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
}
