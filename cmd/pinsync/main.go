package main

import (
	"log"
	"os"

	"github.com/MrSnakeDoc/pinsync/internal/app"
)

func main() {
	if err := app.New().Run(os.Args); err != nil {
		log.Fatalf("❌ pinsync failed: %v", err)
	}
}
