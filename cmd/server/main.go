package main

import (
	"github.com/joho/godotenv"

	"snd/internal/app/server"
)

func main() {
	_ = godotenv.Load()
	server.Run()
}
