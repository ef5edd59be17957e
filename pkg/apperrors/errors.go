package apperrors

import "errors"

var (
	ErrStatementOrder       = errors.New("statement order violates table dependencies")
	ErrUnsupportedDialect   = errors.New("unsupported SQL dialect")
	ErrUnsupportedWarehouse = errors.New("unsupported warehouse type")
	ErrUnsafeConfigValue    = errors.New("unsafe configuration value")
	ErrSourceEmpty          = errors.New("source location has no objects")
)
