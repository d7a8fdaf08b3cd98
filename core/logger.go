package core

// Logger is the service-wide logging contract. Implementations live in
// services/logger; everything below the API layer takes one of these instead
// of a concrete logging client.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
