// Package postgres implements hrAuth.Directory and counter.Store on PostgreSQL.
//
// Uniqueness of tenant codes, login identifiers, and emails is enforced by table
// constraints; violations are reported as *hrAuth.ConflictError naming the field.
// The schema ships as embedded migrations applied by Open when AutoMigrate is set.
package postgres
