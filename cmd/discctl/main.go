package main

import (
	"github.com/danmuck/discctl/internal/logging"
	"github.com/kisom/goutils/die"
)

func main() {
	logging.ConfigureRuntime()
	die.If(newRootCommand().Execute())
}
