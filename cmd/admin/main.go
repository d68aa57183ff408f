package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"

	"user-service/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
