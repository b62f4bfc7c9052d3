package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"masterpiece/internal/gate"
	"masterpiece/internal/infra"
	"masterpiece/internal/infra/credentials"
)

func main() {
	_ = godotenv.Load()

	var (
		keyFlag   string
		clearFlag bool
		showFlag  bool
	)
	flag.StringVar(&keyFlag, "key", "", "Veo API key to store (prompted when empty)")
	flag.BoolVar(&clearFlag, "clear", false, "remove the stored key")
	flag.BoolVar(&showFlag, "status", false, "report whether a key is stored")
	flag.Parse()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "veokey").Logger()
	store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
	if err := store.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare schema: %v\n", err)
		os.Exit(1)
	}

	switch {
	case clearFlag:
		if err := store.ClearVeoAPIKey(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clear api key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Veo API key removed")
		return
	case showFlag:
		key, err := store.VeoAPIKey(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read api key: %v\n", err)
			os.Exit(1)
		}
		if key == "" {
			fmt.Println("no Veo API key stored")
			return
		}
		fmt.Printf("Veo API key stored (...%s)\n", lastFour(key))
		return
	}

	var prompter gate.Prompter = gate.ReaderPrompter{In: os.Stdin, Out: os.Stdout}
	if key := strings.TrimSpace(keyFlag); key != "" {
		prompter = fixedKey(key)
	}
	host := gate.NewStoreHost(store, prompter, "cli")
	g := gate.New(host, &logger)
	if err := g.RequestCredentialSelection(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store api key: %v\n", err)
		os.Exit(1)
	}
	if !g.IsCredentialSelected(ctx) {
		fmt.Println("selection cancelled, no key stored")
		return
	}
	fmt.Println("Veo API key stored successfully")
}

type fixedKey string

func (k fixedKey) PromptAPIKey(ctx context.Context) (string, error) {
	return string(k), nil
}

func lastFour(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[len(key)-4:]
}
