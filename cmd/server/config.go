package main

import "time"

type Config struct {
	BufferSize      int           `env:"BUFFER_SIZE,default=64"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	SessionDuration time.Duration `env:"SESSION_DURATION,default=24h"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}
