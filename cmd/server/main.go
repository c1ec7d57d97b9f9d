package main

import (
	"log"

	"github.com/lucho20091/firebase-next/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
