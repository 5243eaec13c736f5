package cmd

import (
	"github.com/cg-saarland/GloBiE/log"
	"github.com/urfave/cli"
)

var logger = log.New("globie")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
