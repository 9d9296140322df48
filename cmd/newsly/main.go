package main

import (
	"newsly/cmd/handlers"
	"newsly/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
