package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Wang-tianhao/cafe-auth-go/internal/config"
	"github.com/Wang-tianhao/cafe-auth-go/jwtauth"
)

// tokengen mints an access/refresh pair for an owner id using the service
// signing configuration (JWT_SECRET, JWT_ACCESS_EXPIRATION, JWT_REFRESH_EXPIRATION
// or a config file).
func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		subject    = flag.String("sub", "", "Subject (owner id)")
		payload    = flag.String("payload", "", `Optional JSON object carried in the "data" claim`)
		asJSON     = flag.Bool("json", false, "Print the pair as JSON")
	)
	flag.Parse()

	if *subject == "" {
		log.Fatal("-sub is required")
	}

	var data map[string]any
	if *payload != "" {
		if err := json.Unmarshal([]byte(*payload), &data); err != nil {
			log.Fatalf("Invalid -payload: %v", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	authCfg, err := jwtauth.NewConfig(jwtauth.WithSigning(cfg.Signing()))
	if err != nil {
		log.Fatalf("Invalid signing config: %v", err)
	}
	issuer := jwtauth.NewIssuer(authCfg, jwtauth.NewCodec(authCfg))

	pair, err := issuer.IssuePair(context.Background(), *subject, data)
	if err != nil {
		log.Fatalf("Failed to issue tokens: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pair); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Println("\n=== Token Pair Generated ===")
	fmt.Printf("\nAccess token:  %s\n", pair.AccessToken)
	fmt.Printf("Refresh token: %s\n", pair.RefreshToken)
	fmt.Printf("Expires in:    %ds\n\n", pair.ExpiresIn)
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080%s/owners/%s\n\n",
		pair.AccessToken, cfg.HTTP.Prefix, *subject)
}
