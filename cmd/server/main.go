package main

import (
	"github.com/loftline/propgraph/internal/server"
	"github.com/loftline/propgraph/internal/util"
	"github.com/loftline/propgraph/pkg/logger"
	"github.com/loftline/propgraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug:  debug,
		Prefix: "server",
	})
	logger.Init(consoleLogger)

	server.Init()
}
