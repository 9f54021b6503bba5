package logger

import (
	"go.uber.org/zap"
)

const (
	LevelDebug = zap.DebugLevel
	LevelInfo  = zap.InfoLevel
	LevelWarn  = zap.WarnLevel
	LevelError = zap.ErrorLevel
)

var (
	String  = zap.String
	Strings = zap.Strings
	Int     = zap.Int
	Bool    = zap.Bool
	ErrorF  = zap.Error
	Any     = zap.Any
)

type (
	Field = zap.Field
)
