package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/config"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/ledger"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	pgrepo "github.com/dmehra2102/prod-golang-projects/careslot/internal/repository/postgres"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt: true,
		// Duplicate-key errors must surface as gorm.ErrDuplicatedKey:
		// slot reservation depends on recognizing them.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"scheduling", "directory"} // logical namespace
	for _, s := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", s)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", s, err)
		}
	}

	models := []any{
		&schedule.DoctorAvailability{},
		&appointment.Appointment{},
		&ledger.Reservation{},
		&pgrepo.DoctorRecord{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// The double-booking guard. AutoMigrate builds it from the model
		// tags as well; this keeps it present on databases migrated before
		// the tag existed.
		{
			name:  "ux_reservations_slot",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS ux_reservations_slot ON scheduling.slot_reservations (doctor_id, date, slot_min)`,
		},
		{
			name:  "idx_appointments_active_day",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_active_day ON scheduling.appointments (doctor_id, date, slot_min) WHERE status = 'active'`,
		},
		{
			name:  "idx_appointments_upcoming",
			query: `CREATE INDEX IF NOT EXISTS idx_appointments_upcoming ON scheduling.appointments (date, slot_min) WHERE status = 'active'`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
