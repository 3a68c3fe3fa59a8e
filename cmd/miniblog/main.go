package main

import (
	"log"

	"github.com/patric-chuzhbe/miniblog/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		log.Fatalf("Unable to create the application instance: %v", err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
