// Package custodytest provides mocks and helpers for testing handlers,
// decorators and extensions of the custody application.
package custodytest
