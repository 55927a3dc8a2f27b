// Command bootstrap-admin seeds an administrator record so that the
// login endpoint has a principal to authenticate, or, with -generate,
// prints fresh well-formed identity numbers for test fixtures.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/personvault/personvault/internal/auth"
	"github.com/personvault/personvault/internal/identity"
	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/repository"
)

type output struct {
	IdentityNumber string `json:"identity_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	IsAdmin        bool   `json:"is_admin"`
}

func main() {
	var (
		databaseURL    = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		generate       = flag.Int("generate", 0, "Print N valid identity numbers and exit")
		identityNumber = flag.String("identity", "", "Identity number for the admin (generated when empty)")
		firstName      = flag.String("first-name", "System", "Admin first name")
		lastName       = flag.String("last-name", "Administrator", "Admin last name")
		email          = flag.String("email", "admin@personvault.local", "Admin email")
		birthDate      = flag.String("birth-date", "1970-01-01", "Admin birth date (YYYY-MM-DD)")
		password       = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (plaintext, hashed before storage)")
		bcryptCost     = flag.Int("bcrypt-cost", 10, "bcrypt cost for the password hash")
		format         = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *generate > 0 {
		for i := 0; i < *generate; i++ {
			fmt.Println(identity.Generate())
		}
		return
	}

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD (or -password) is required")
		os.Exit(1)
	}

	number := *identityNumber
	if number == "" {
		number = identity.Generate()
	}

	hash, err := auth.HashPassword(*password, *bcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	born, err := model.ParseDate(*birthDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	person, err := model.NewPerson(model.PersonInput{
		FirstName:      *firstName,
		LastName:       *lastName,
		IdentityNumber: number,
		Email:          *email,
		BirthDate:      born,
		IsAdmin:        true,
		HashedPassword: hash,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "apply migrations:", err)
		os.Exit(1)
	}

	if err := ensureAdmin(ctx, repo, person); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := output{
		IdentityNumber: person.IdentityNumber,
		FirstName:      person.FirstName,
		LastName:       person.LastName,
		Email:          person.Email,
		IsAdmin:        person.IsAdmin,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.IdentityNumber)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureAdmin(ctx context.Context, repo *repository.Repository, person *model.Person) error {
	existing, err := repo.GetPerson(ctx, person.IdentityNumber)
	if err == nil {
		if !existing.IsAdmin {
			return fmt.Errorf("person %s exists and is not an admin", person.IdentityNumber)
		}
		return nil
	}

	if err := repo.CreatePerson(ctx, person); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
