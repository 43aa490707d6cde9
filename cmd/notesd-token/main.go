// Command notesd-token prints a bearer token for an owner, signed with the
// server's configured secret. Useful for curl and local development.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/auth"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/config"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/version"
)

func main() {
	owner := pflag.StringP("owner", "o", "", "owner id to put in the token (required)")
	ttl := pflag.DurationP("ttl", "t", 24*time.Hour, "token lifetime, 0 for no expiry")
	showVersion := pflag.BoolP("version", "v", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *owner == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ invalid configuration: %v", err)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Println("⚠️  signing with the default secret")
	}

	v, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	token, err := v.Issue(*owner, *ttl, time.Now())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Println(token)
}
