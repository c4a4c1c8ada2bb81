package main

import "time"

type Config struct {
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	CursorSecret     string        `env:"CURSOR_SECRET,required=true"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
	Host             string        `env:"HOST,default=localhost"`
	Port             int           `env:"PORT,default=8080"`
	DebugPort        *int          `env:"DEBUG_PORT"`
	NameMinLength    int           `env:"NAME_MIN_LENGTH,default=1"`
	NameMaxLength    int           `env:"NAME_MAX_LENGTH,default=64"`
	MaxContentLength int           `env:"MAX_CONTENT_LENGTH,default=4096"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}
