// Package logger provides a structured logging solution using the Zap logging library.
// It exposes context-first helpers so that request execution, transport decorators
// and command executors log through one shared, level-controlled logger.
// Key-value fields attached to a context with WithKV are added to every entry
// logged with that context.
package logger
