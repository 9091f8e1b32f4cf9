package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
//
// Parameters:
//   - err: The error to be converted into a slog.Attr.
//
// Returns:
//   - slog.Attr: An attribute with the key "error" and the error's message as the value.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer creates a slog.Attr with the provided key and the string representation
// of the given fmt.Stringer value. This function is useful for logging purposes
// where you want to include a string representation of an object that implements
// the fmt.Stringer interface.
//
// Parameters:
//   - key: A string representing the key for the attribute.
//   - value: An object that implements the fmt.Stringer interface.
//
// Returns:
//   - slog.Attr: An attribute containing the key and the string representation of the value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Attribute keys shared by everything that logs bus traffic, so log lines
// stay greppable across packages.
const (
	KeyLoggerName = "logger"
	KeyTopic      = "topic"
	KeySubscriber = "subscriber"
	KeyAgent      = "agent"
	KeyOp         = "op"
)

// LoggerName returns an attribute naming the component that emitted the record.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

// Topic returns an attribute for a bus topic.
func Topic(topic string) slog.Attr {
	return slog.String(KeyTopic, topic)
}

// Subscriber returns an attribute for a subscriber identity.
func Subscriber(name string) slog.Attr {
	return slog.String(KeySubscriber, name)
}

// AgentName returns an attribute for an agent.
func AgentName(name string) slog.Attr {
	return slog.String(KeyAgent, name)
}

// Op returns an attribute for an operation name within an agent.
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}
