package endpoints

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/dft/component"
)

// insertBatchRows bounds the multi-row VALUES clause so parameter counts
// stay under driver limits.
const insertBatchRows = 500

// dialect captures the per-database differences in the shared load path.
type dialect struct {
	name      string
	quote     func(ident string) string
	dialector func(cfg component.Config) gorm.Dialector
	createSQL func(d *dialect, table string, columns []string, cfg component.Config) (string, error)
}

// sqlEndpoint is the shared gorm load path behind the postgres, mysql, and
// clickhouse endpoints.
type sqlEndpoint struct {
	dialect *dialect
	table   string
	mode    string
	create  bool
	cfg     component.Config
}

func newSQLEndpoint(d *dialect, cfg component.Config) (component.Endpoint, error) {
	table := cfg.String("table")
	if table == "" {
		return nil, fmt.Errorf("%s endpoint: table is required", d.name)
	}
	mode := cfg.StringOr("mode", "append")
	switch mode {
	case "append", "replace":
	default:
		return nil, fmt.Errorf("%s endpoint: unknown mode %q", d.name, mode)
	}
	create := true
	if _, ok := cfg["auto_create"]; ok {
		create = cfg.Bool("auto_create")
	}
	return &sqlEndpoint{dialect: d, table: table, mode: mode, create: create, cfg: cfg}, nil
}

func (e *sqlEndpoint) open() (*gorm.DB, error) {
	db, err := gorm.Open(e.dialect.dialector(e.cfg), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("%s endpoint: %w", e.dialect.name, err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (e *sqlEndpoint) Load(ctx context.Context, pkt *component.Packet, vars component.Vars) error {
	db, err := e.open()
	if err != nil {
		return err
	}
	defer closeDB(db)
	db = db.WithContext(ctx)

	if e.create && !db.Migrator().HasTable(e.table) {
		ddl, err := e.dialect.createSQL(e.dialect, e.table, pkt.Data.ColumnNames(), e.cfg)
		if err != nil {
			return err
		}
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("%s endpoint: create table %s: %w", e.dialect.name, e.table, err)
		}
	}

	if e.mode == "replace" {
		if err := db.Exec(truncateSQL(e.dialect, e.table)).Error; err != nil {
			return fmt.Errorf("%s endpoint: truncate %s: %w", e.dialect.name, e.table, err)
		}
	}

	if col, start, end, ok := windowBounds(vars); ok {
		sql := windowDeleteSQL(e.dialect, e.table, col)
		if err := db.Exec(sql, start, end).Error; err != nil {
			return fmt.Errorf("%s endpoint: window delete on %s: %w", e.dialect.name, e.table, err)
		}
	}

	columns := pkt.Data.ColumnNames()
	rows := pkt.Data.Rows
	for len(rows) > 0 {
		batch := rows
		if len(batch) > insertBatchRows {
			batch = rows[:insertBatchRows]
		}
		rows = rows[len(batch):]

		sql := insertSQL(e.dialect, e.table, columns, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		for _, row := range batch {
			args = append(args, row...)
		}
		if err := db.Exec(sql, args...).Error; err != nil {
			return fmt.Errorf("%s endpoint: insert into %s: %w", e.dialect.name, e.table, err)
		}
	}
	return nil
}

// windowBounds extracts the event time column and window from vars. All
// three must be present for the pre-load delete to apply.
func windowBounds(vars component.Vars) (col string, start, end time.Time, ok bool) {
	col, _ = vars[component.VarEventTimeColumn].(string)
	start, okStart := vars[component.VarBatchStart].(time.Time)
	end, okEnd := vars[component.VarBatchEnd].(time.Time)
	if col == "" || !okStart || !okEnd {
		return "", time.Time{}, time.Time{}, false
	}
	return col, start, end, true
}

func truncateSQL(d *dialect, table string) string {
	return "TRUNCATE TABLE " + d.quote(table)
}

func windowDeleteSQL(d *dialect, table, col string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s >= ? AND %s < ?",
		d.quote(table), d.quote(col), d.quote(col))
}

func insertSQL(d *dialect, table string, columns []string, rowCount int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := make([]string, rowCount)
	for i := range values {
		values[i] = placeholders
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.quote(table), strings.Join(quoted, ", "), strings.Join(values, ", "))
}

// columnDefs builds quoted column definitions from the user-declared schema
// map, in packet column order. Every packet column must have a declared
// type.
func columnDefs(d *dialect, table string, columns []string, schema map[string]any) ([]string, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("%s endpoint: schema is required to auto-create table %s", d.name, table)
	}
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		typ, ok := schema[col].(string)
		if !ok || typ == "" {
			return nil, fmt.Errorf("%s endpoint: schema for table %s is missing column %q", d.name, table, col)
		}
		defs = append(defs, d.quote(col)+" "+typ)
	}
	return defs, nil
}

func standardCreateSQL(d *dialect, table string, columns []string, cfg component.Config) (string, error) {
	defs, err := columnDefs(d, table, columns, cfg.Map("schema"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.quote(table), strings.Join(defs, ", ")), nil
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func backtickQuote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// connField reads a connection parameter, preferring the merged connection
// fields over top-level config keys.
func connField(cfg component.Config, key, fallback string) string {
	if conn := cfg.Connection(); conn != nil {
		switch v := conn[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case int:
			return fmt.Sprintf("%d", v)
		case int64:
			return fmt.Sprintf("%d", v)
		case float64:
			return fmt.Sprintf("%d", int64(v))
		}
	}
	return cfg.StringOr(key, fallback)
}
