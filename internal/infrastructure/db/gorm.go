package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

var DefaultPool = Pool{MaxOpen: 30, MaxIdle: 10, MaxLifetime: 30 * time.Minute, MaxIdleTime: 10 * time.Minute}

type Option func(*options)

type options struct {
	log  *zap.Logger
	pool Pool
}

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

func WithPool(p Pool) Option { return func(o *options) { o.pool = p } }

func OpenGorm(dsn string, opts ...Option) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), opts...)
}

// OpenGormWithDialector opens gorm on any dialector, applies the pool settings
// and pings once.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	o := options{log: zap.NewNop(), pool: DefaultPool}
	for _, fn := range opts {
		fn(&o)
	}

	cfg := &gorm.Config{
		Logger: logger.New(zap.NewStdLog(o.log.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		// unique-index violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.pool.MaxOpen)
	sqlDB.SetMaxIdleConns(o.pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(o.pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(o.pool.MaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	o.log.Info("gorm: connected")
	return db, nil
}
