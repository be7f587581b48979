package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Driver string
	DSN    string
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverMySQL, DriverSQLite:
		if c.DSN == "" {
			return fmt.Errorf("database dsn required for driver %s", c.Driver)
		}
		return nil
	default:
		return fmt.Errorf("unknown database driver: %q", c.Driver)
	}
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMySQL:
		return mysql.Open(c.DSN), nil
	case DriverSQLite:
		return sqlite.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("driver %q has no sql dialector", c.Driver)
	}
}

// String hides the mysql password
func (c Config) String() string {
	dsn := c.DSN
	if c.Driver == DriverMySQL {
		if at := strings.LastIndex(dsn, "@"); at > 0 {
			if colon := strings.Index(dsn[:at], ":"); colon >= 0 {
				dsn = dsn[:colon+1] + "***" + dsn[at:]
			}
		}
	}
	return fmt.Sprintf("driver=%s dsn=%s", c.Driver, dsn)
}
