// Package credential issues one-time temporary passwords for accounts created on behalf
// of an employee.
//
// A temporary password is shown to the issuing admin exactly once. Callers hash it before
// persistence and must never log it.
package credential
