// Package db embeds the SQL schema for the POS database.
package db

import _ "embed"

// Schema contains the DDL for every table: catalog, tables, promotions,
// orders and api_keys. It is applied at startup by postgres.RunMigrations.
//
//go:embed migrations/001_schema.sql
var Schema string
