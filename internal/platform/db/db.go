package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/packgate/internal/domain"
	"github.com/yungbote/packgate/internal/platform/envutil"
	"github.com/yungbote/packgate/internal/platform/logger"
)

// Service owns the audit database: a local sqlite file by default, postgres
// when PACKGATE_DB=postgres. The evaluation itself never touches the
// database; persistence is post-run archival only.
type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	var dialector gorm.Dialector
	switch envutil.GetEnv("PACKGATE_DB", "sqlite", log) {
	case "postgres":
		host := envutil.GetEnv("POSTGRES_HOST", "localhost", log)
		port := envutil.GetEnv("POSTGRES_PORT", "5432", log)
		user := envutil.GetEnv("POSTGRES_USER", "postgres", log)
		password := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
		name := envutil.GetEnv("POSTGRES_NAME", "packgate", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	default:
		path := envutil.GetEnv("PACKGATE_DB_PATH", "packgate.db", log)
		dialector = sqlite.Open(path)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) AutoMigrateAll() error {
	s.log.Debug("Auto migrating audit tables...")
	if err := s.db.AutoMigrate(
		&domain.EvaluationRun{},
		&domain.PackVerdictRow{},
	); err != nil {
		return fmt.Errorf("db: auto migrate: %w", err)
	}
	return nil
}
