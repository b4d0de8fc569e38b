package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BigazyGalym/Diplom/internal/auth"
	"github.com/BigazyGalym/Diplom/internal/repository"
	"github.com/BigazyGalym/Diplom/internal/service"
)

type output struct {
	UserID    string            `json:"user_id"`
	Email     string            `json:"email"`
	Wallets   map[string]string `json:"wallets"`
	KeyID     string            `json:"key_id"`
	Key       string            `json:"key"`
	KeyPrefix string            `json:"key_prefix"`
	Scopes    []string          `json:"scopes"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Email of the user to register (required)")
		firstName   = flag.String("first-name", "", "First name")
		lastName    = flag.String("last-name", "", "Last name")
		phone       = flag.String("phone", "", "Phone number")
		keyEnv      = flag.String("env", auth.EnvLive, "Key environment: live or test")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}
	if *email == "" {
		fail("-email is required")
	}
	if *keyEnv != auth.EnvLive && *keyEnv != auth.EnvTest {
		fail("invalid env; use live or test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fail("connect database: " + err.Error())
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewUserService(repo, service.SystemClock, *keyEnv, nil, logger)

	result, err := users.Register(ctx, service.RegisterInput{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
		Phone:     *phone,
	})
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		for field, msg := range verr.Fields {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
		os.Exit(1)
	case errors.Is(err, service.ErrEmailExists):
		fail("a user with this email already exists")
	case err != nil:
		fail("register user: " + err.Error())
	}

	out := output{
		UserID:    result.User.ID,
		Email:     result.User.Email,
		Wallets:   make(map[string]string, len(result.Wallets)),
		KeyID:     result.APIKey.ID,
		Key:       result.PlaintextKey,
		KeyPrefix: result.APIKey.KeyPrefix,
		Scopes:    result.APIKey.Scopes,
	}
	for _, w := range result.Wallets {
		out.Wallets[w.Name] = w.ID
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
