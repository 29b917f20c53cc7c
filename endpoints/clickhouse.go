package endpoints

import (
	"fmt"
	"strings"

	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterEndpoint("clickhouse", func(cfg component.Config) (component.Endpoint, error) {
		return newSQLEndpoint(clickhouseDialect, cfg)
	})
}

var clickhouseDialect = &dialect{
	name:  "clickhouse",
	quote: backtickQuote,
	dialector: func(cfg component.Config) gorm.Dialector {
		return clickhouse.Open(clickhouseDSN(cfg))
	},
	createSQL: clickhouseCreateSQL,
}

func clickhouseDSN(cfg component.Config) string {
	return fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s",
		connField(cfg, "user", "default"),
		connField(cfg, "password", ""),
		connField(cfg, "host", "localhost"),
		connField(cfg, "port", "9000"),
		connField(cfg, "database", "default"),
	)
}

// clickhouseCreateSQL extends the standard DDL with the engine and sort key
// ClickHouse requires.
func clickhouseCreateSQL(d *dialect, table string, columns []string, cfg component.Config) (string, error) {
	defs, err := columnDefs(d, table, columns, cfg.Map("schema"))
	if err != nil {
		return "", err
	}
	engine := cfg.StringOr("engine", "MergeTree()")
	orderBy := cfg.StringOr("order_by", "tuple()")
	return fmt.Sprintf("CREATE TABLE %s (%s) ENGINE = %s ORDER BY %s",
		d.quote(table), strings.Join(defs, ", "), engine, orderBy), nil
}
