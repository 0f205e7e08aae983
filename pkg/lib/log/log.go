// Package log provides the logging interface for the activator SDK.
//
// The SDK accepts any implementation of [Logger]. [Noop] discards everything
// and is used when no logger is configured.
//
// A logrus based application can reuse its logger with a small adapter that
// forwards the format methods to a *logrus.Entry and maps [Kv] to logrus.Fields
// in WithValues.
package log

import "github.com/slok/activator/internal/log"

// Logger is the interface that loggers must implement for the SDK.
type Logger = log.Logger

// Kv is a helper type for structured logging key-value pairs.
type Kv = log.Kv

// Noop is a logger that discards all log output.
var Noop = log.Noop
