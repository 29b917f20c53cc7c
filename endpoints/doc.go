// Package endpoints provides the built-in endpoint components: csv,
// postgres, mysql, and clickhouse. The database endpoints share one load
// path and differ only in dialect: identifier quoting, DSN assembly, and
// table DDL.
package endpoints
