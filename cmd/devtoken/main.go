package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/config"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	log "github.com/sirupsen/logrus"
)

// Prints a bearer token for local testing, signed with JWT_SECRET.
func main() {
	userID := flag.String("user", "", "user id to put in the token (required)")
	name := flag.String("name", "", "display name claim")
	email := flag.String("email", "", "email claim")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiry).Issue(*userID, *name, *email)
	if err != nil {
		log.WithError(err).Fatal("failed to issue token")
	}
	fmt.Println(token)
}
