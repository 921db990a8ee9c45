package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/joeshaw/envdecode"

	"github.com/minaorangina/rails/server"
	"github.com/minaorangina/rails/store"
)

type config struct {
	Port int `env:"PORT,default=8000"`
}

func main() {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil {
		log.Fatal(err)
	}

	s := server.NewServer(store.NewInMemoryGameStore())
	handler := handlers.LoggingHandler(os.Stdout, s)

	log.Printf("Listening on port %d...", cfg.Port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), handler))
}
