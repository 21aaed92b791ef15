// internal/config/database.go
package config

import (
	"fmt"
)

// DSN pins the session time zone to UTC so stage dates round-trip as stored.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
