package config

import (
	"fmt"
	"os"
	"path"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"flockscope/internal/analysis"
	"flockscope/internal/tracker"
)

const defaultSqlDsn = "root:123456@tcp(127.0.0.1:3306)/flockscope?charset=utf8mb4&parseTime=True&loc=Local"

const (
	BackendGocv     = "gocv"
	BackendImageSeq = "imageseq"

	StoreBadger = "badger"
	StoreMySQL  = "mysql"
)

type AnalysisConfig struct {
	TargetClass   int     `yaml:"targetClass" validate:"min=0"`
	FPSSample     int     `yaml:"fpsSample" validate:"gt=0"`
	ConfThreshold float32 `yaml:"confThreshold" validate:"gt=0,lte=1"`
	MaxConcurrent int     `yaml:"maxConcurrent" validate:"gt=0"`
	Backend       string  `yaml:"backend" validate:"oneof=gocv imageseq"`
	ImageFPS      float64 `yaml:"imageFPS" validate:"gt=0"`
}

type DBConfig struct {
	DSN          string `yaml:"dsn"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxLifetime  int    `yaml:"maxLifetime"`
}

type StoreConfig struct {
	Driver string   `yaml:"driver" validate:"oneof=badger mysql"`
	DB     DBConfig `yaml:"db"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket" validate:"required_if=Enabled true"`
	Endpoint        string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

type NSQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	NSQDAddr string `yaml:"nsqdAddr" validate:"required_if=Enabled true"`
	Topic    string `yaml:"topic" validate:"required_if=Enabled true"`
}

type Config struct {
	Addr      string               `yaml:"addr"`
	SSLCert   string               `yaml:"sslCert"`
	SSLKey    string               `yaml:"sslKey"`
	JwtSecret string               `yaml:"jwtSecret"`
	WorkDir   string               `yaml:"workDir" validate:"required"`
	Triton    tracker.TritonConfig `yaml:"triton"`
	Tracker   tracker.Config       `yaml:"tracker"`
	Analysis  AnalysisConfig       `yaml:"analysis"`
	Store     StoreConfig          `yaml:"store"`
	S3        S3Config             `yaml:"s3"`
	NSQ       NSQConfig            `yaml:"nsq"`
}

func (c Config) ArtifactDir() string {
	return path.Join(c.WorkDir, "artifacts")
}

func (c Config) DataDir() string {
	return path.Join(c.WorkDir, "data")
}

func DefaultConfig() *Config {
	cfg := &Config{
		Addr: "127.0.0.1:8000",
		Triton: tracker.TritonConfig{
			ServerAddr:   "localhost:8001",
			ModelName:    "yolov8n",
			ModelVersion: "1",
			TimeoutSec:   30,
		},
		Tracker: tracker.DefaultConfig(),
		Analysis: AnalysisConfig{
			TargetClass:   analysis.BirdClass,
			FPSSample:     analysis.DefaultFPSSample,
			ConfThreshold: analysis.DefaultConfThreshold,
			MaxConcurrent: 2,
			Backend:       BackendGocv,
			ImageFPS:      25,
		},
		Store: StoreConfig{
			Driver: StoreBadger,
			DB: DBConfig{
				DSN:          defaultSqlDsn,
				MaxIdleConns: 10,
				MaxOpenConns: 100,
				MaxLifetime:  60,
			},
		},
		S3: S3Config{
			Bucket:   "flockscope",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		NSQ: NSQConfig{
			NSQDAddr: "localhost:4150",
			Topic:    "analysis_results",
		},
	}

	dataDir := os.Getenv("FLOCKSCOPE_DATA")
	if dataDir != "" {
		cfg.WorkDir = path.Join(dataDir, "flockscope_dir")
	} else {
		cfg.WorkDir = "./flockscope_dir"
	}

	return cfg
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func LoadConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %v", err)
	}
	err = yaml.Unmarshal(data, conf)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config file: %v", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("validate config file: %v", err)
	}

	return conf, nil
}
