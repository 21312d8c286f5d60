// Package httpapi serves the engine over JSON/HTTP.
//
// Routes mirror the HR portal's auth and admin surfaces. Every response is an
// envelope of the form {"success": bool, "message": string, "data": ...}; failures carry
// a stable "error" code instead of data.
package httpapi
