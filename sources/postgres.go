package sources

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/dft/component"
)

func init() {
	component.RegisterSource("postgres", func(cfg component.Config) (component.Source, error) {
		query := cfg.String("query")
		if query == "" {
			return nil, fmt.Errorf("postgres source: query is required")
		}
		return &postgresSource{dsn: postgresDSN(cfg), query: query}, nil
	})
}

// postgresSource runs one SELECT per extraction and materializes the result
// set as a table.
type postgresSource struct {
	dsn   string
	query string
}

// postgresDSN assembles a libpq-style DSN from the merged connection
// fields, falling back to top-level config keys for steps without a named
// connection.
func postgresDSN(cfg component.Config) string {
	get := func(key, fallback string) string {
		if conn := cfg.Connection(); conn != nil {
			if s, ok := conn[key].(string); ok && s != "" {
				return s
			}
			if n, ok := conn[key].(int); ok {
				return fmt.Sprintf("%d", n)
			}
		}
		return cfg.StringOr(key, fallback)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		get("host", "localhost"),
		get("port", "5432"),
		get("user", "postgres"),
		get("password", ""),
		get("database", "postgres"),
		get("sslmode", "disable"),
	)
}

func (s *postgresSource) Extract(ctx context.Context, vars component.Vars) (*component.Packet, error) {
	db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres source: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres source: %w", err)
	}
	defer sqlDB.Close()

	rows, err := db.WithContext(ctx).Raw(s.query).Rows()
	if err != nil {
		return nil, fmt.Errorf("postgres source: query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("postgres source: %w", err)
	}
	tbl := component.NewTable(columns...)
	for rows.Next() {
		values := make(component.Row, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("postgres source: scan failed: %w", err)
		}
		tbl.Rows = append(tbl.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres source: %w", err)
	}

	pkt := component.NewPacket(tbl)
	pkt.Metadata["query"] = s.query
	return pkt, nil
}

func (s *postgresSource) TestConnection(ctx context.Context) bool {
	db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	defer sqlDB.Close()
	return sqlDB.PingContext(ctx) == nil
}
