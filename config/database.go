package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// SearchLimit caps list endpoints.
const SearchLimit = 100

var db *gorm.DB

func GetDB() *gorm.DB {
	return db
}

// SetDB swaps the shared handle; tests inject sqlite through it.
func SetDB(conn *gorm.DB) {
	db = conn
}

func init() {
	_ = godotenv.Load()
}

// DatabaseSettings is the MySQL connection and pool configuration.
type DatabaseSettings struct {
	User            string
	Password        string
	Host            string
	Port            string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// GetDatabaseSettings reads DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME and the pool knobs
// DB_MAX_OPEN_CONNS (50), DB_MAX_IDLE_CONNS (25), DB_CONN_MAX_LIFETIME_SECONDS (300),
// DB_CONN_MAX_IDLE_TIME_SECONDS (60).
func GetDatabaseSettings() DatabaseSettings {
	return DatabaseSettings{
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		Host:            os.Getenv("DB_HOST"),
		Port:            os.Getenv("DB_PORT"),
		Name:            os.Getenv("DB_NAME"),
		MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second,
	}
}

// DSN builds the go-sql-driver DSN. A host of /cloudsql/<instance> dials the unix socket.
func (s DatabaseSettings) DSN() string {
	network, address := "tcp", fmt.Sprintf("%s:%s", s.Host, s.Port)
	if strings.HasPrefix(s.Host, "/cloudsql/") {
		network, address = "unix", s.Host
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true&loc=UTC",
		s.User, s.Password, network, address, s.Name)
}

func (s DatabaseSettings) applyPool(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if s.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(s.MaxOpenConns)
	}
	if s.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(s.MaxIdleConns)
	}
	if s.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(s.ConnMaxLifetime)
	}
	if s.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(s.ConnMaxIdleTime)
	}
	return nil
}

// ConnectDatabaseWithRetry blocks until MySQL answers, then installs the shared handle.
// main calls it after the listener is up so /healthz answers meanwhile.
func ConnectDatabaseWithRetry() {
	settings := GetDatabaseSettings()
	fields := logrus.Fields{"field": "database", "host": settings.Host, "name": settings.Name}

	for attempt := 1; ; attempt++ {
		conn, err := gorm.Open(mysql.Open(settings.DSN()), initConfig())
		if err == nil {
			if err := settings.applyPool(conn); err != nil {
				logg.WithFields(fields).Warn("pool settings not applied: " + err.Error())
			}
			if err := conn.Use(otelgorm.NewPlugin()); err != nil {
				logg.WithFields(fields).Warn("otelgorm plugin not installed: " + err.Error())
			}
			db = conn
			logg.WithFields(fields).WithField("attempt", attempt).Info("connected to database")
			return
		}

		sleep := backoff(attempt)
		logg.WithFields(fields).WithField("attempt", attempt).
			Errorf("database connection failed: %v; retrying in %s", err, sleep)
		time.Sleep(sleep)
	}
}

// backoff doubles from 2s and stops at 30s.
func backoff(attempt int) time.Duration {
	sleep := time.Second * time.Duration(1<<min(attempt, 5))
	if sleep > 30*time.Second {
		sleep = 30 * time.Second
	}
	return sleep
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GormConfig is shared by the MySQL connection and the sqlite test harness.
func GormConfig() *gorm.Config {
	return initConfig()
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         initLog(),
		NamingStrategy: schema.NamingStrategy{},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func initLog() logger.Interface {
	return logger.New(
		logg,
		logger.Config{
			LogLevel:                  logger.Error,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
}
