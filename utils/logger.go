package utils

import "go.uber.org/zap"

// NewLogger returns a development logger for the development env and a
// production JSON logger otherwise.
func NewLogger(appEnv, name string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if appEnv == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Named(name), nil
}
