package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/your-org/ecommerce-storefront/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/inspect_token.go <token>")
	}

	token := auth.ExtractTokenFromHeader(os.Args[1])
	if token == "" {
		token = os.Args[1]
	}

	info := auth.InspectToken(token)
	if !info.IsJWT {
		fmt.Println("Opaque token: the storefront keeps it until the backend rejects it")
		return
	}

	fmt.Printf("Subject: %s\n", info.Subject)
	if info.ExpiresAt == nil {
		fmt.Println("Expires: never")
		return
	}

	fmt.Printf("Expires: %s\n", info.ExpiresAt.UTC().Format(time.RFC3339))
	if info.Expired(time.Now()) {
		fmt.Println("Status: expired, the session would be dropped")
	} else {
		fmt.Printf("Status: valid for %s\n", time.Until(*info.ExpiresAt).Round(time.Second))
	}
}
