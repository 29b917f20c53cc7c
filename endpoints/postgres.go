package endpoints

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterEndpoint("postgres", func(cfg component.Config) (component.Endpoint, error) {
		return newSQLEndpoint(postgresDialect, cfg)
	})
}

var postgresDialect = &dialect{
	name:  "postgres",
	quote: doubleQuote,
	dialector: func(cfg component.Config) gorm.Dialector {
		return postgres.Open(postgresEndpointDSN(cfg))
	},
	createSQL: standardCreateSQL,
}

func postgresEndpointDSN(cfg component.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		connField(cfg, "host", "localhost"),
		connField(cfg, "port", "5432"),
		connField(cfg, "user", "postgres"),
		connField(cfg, "password", ""),
		connField(cfg, "database", "postgres"),
		connField(cfg, "sslmode", "disable"),
	)
}
