package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorlink-shell/configs"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB struct
type DB struct {
	Postgres *gorm.DB
}

// DSN builds the libpq connection string
func DSN(cfg configs.Postgres) (string, error) {
	if cfg.Host == "" && cfg.Port == "" && cfg.DbName == "" {
		return "", errors.New("cannot estabished the connection")
	}
	sslmode := "disable"
	if cfg.SSLMode {
		sslmode = "require"
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=%v connect_timeout=10",
		cfg.Host, cfg.Username, cfg.Password, cfg.DbName, port, sslmode), nil
}

// ConnectToPostgreSQL func
func ConnectToPostgreSQL(cfg configs.Postgres) (*DB, error) {
	connectionStr, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	pg, err := gorm.Open(postgres.Open(connectionStr), &gorm.Config{
		DryRun: false,
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		logrus.Error(err)
		return nil, err
	}
	sqlDB, err := pg.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)

	logrus.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DbName,
		"user":     cfg.Username,
	}).Info("Connected with postgres")
	return &DB{Postgres: pg}, nil
}

// Ping checks the connection is alive
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDb, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDb.PingContext(ctx)
}

// DisconnectPostgres func
func DisconnectPostgres(db *gorm.DB) {
	sqlDb, err := db.DB()
	if err != nil {
		logrus.Error(err)
		return
	}
	if err = sqlDb.Close(); err != nil {
		logrus.Error(err)
	}
	logrus.Println("Connected with postgres has closed")
}
