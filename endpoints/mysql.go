package endpoints

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterEndpoint("mysql", func(cfg component.Config) (component.Endpoint, error) {
		return newSQLEndpoint(mysqlDialect, cfg)
	})
}

var mysqlDialect = &dialect{
	name:  "mysql",
	quote: backtickQuote,
	dialector: func(cfg component.Config) gorm.Dialector {
		return mysql.Open(mysqlDSN(cfg))
	},
	createSQL: standardCreateSQL,
}

func mysqlDSN(cfg component.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True",
		connField(cfg, "user", "root"),
		connField(cfg, "password", ""),
		connField(cfg, "host", "localhost"),
		connField(cfg, "port", "3306"),
		connField(cfg, "database", ""),
		connField(cfg, "charset", "utf8mb4"),
	)
}
