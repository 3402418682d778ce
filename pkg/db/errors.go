package db

import "errors"

var (
	ErrInvalidConfig     = errors.New("db: invalid connection configuration")
	ErrConnectionFailed  = errors.New("db: failed to establish connection")
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")
	ErrSetDialect        = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations   = errors.New("db migrator: failed to apply migrations")
)
