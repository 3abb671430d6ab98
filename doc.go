// Package main provides the entry point for the SIGA administration backend.
// It initializes and runs a JSON REST service using the Fiber framework that
// manages the organizational unit hierarchy, scoped role assignments, users,
// vehicles, maintenance records and appointments. The application uses gorm
// for data persistence and enforces unit-subtree scoped permission checks on
// every administrative operation.
package main
