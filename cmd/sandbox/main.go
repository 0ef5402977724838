// Package main runs the in-memory ConvergeX Pay backend.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/convergex-pay/internal/middleware"
	"github.com/go-petr/convergex-pay/internal/sandbox"
	"github.com/go-petr/convergex-pay/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	server, err := sandbox.New(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.SandboxAddress).Msg("CONVERGEX SANDBOX HAS STARTED")

	err = server.Engine.Run(config.SandboxAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
