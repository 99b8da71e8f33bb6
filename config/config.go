package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// Config reads a variable from .env, falling back to the process
// environment when no .env file exists.
func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using process environment")
		}
	})
	return os.Getenv(key)
}
