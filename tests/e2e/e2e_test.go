//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/personvault/personvault/internal/auth"
	"github.com/personvault/personvault/internal/identity"
	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/repository"
)

const adminPassword = "e2e-admin-password"

type personResponse struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	IdentityNumber string `json:"identityNumber"`
	Email          string `json:"email"`
	BirthDate      string `json:"birthDate"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("PERSONVAULT_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	adminIdentity := bootstrapAdmin(t, dbURL)

	token := login(t, baseURL, adminIdentity, adminPassword)
	assertMe(t, baseURL, token, adminIdentity)

	number := identity.Generate()
	created := createPerson(t, baseURL, number)
	if created.IdentityNumber != number {
		t.Errorf("created identityNumber = %q, want %q", created.IdentityNumber, number)
	}

	assertDuplicateRejected(t, baseURL, number)
	assertGet(t, baseURL, number, created.FirstName)
	assertUpdate(t, baseURL, number)
	assertMismatchRejected(t, baseURL, number)
	assertDeleteReturnsRecord(t, baseURL, number)
	assertGone(t, baseURL, number)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func bootstrapAdmin(t *testing.T, dbURL string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL, 0)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	hash, err := auth.HashPassword(adminPassword, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	born, err := model.ParseDate("1970-01-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}

	admin, err := model.NewPerson(model.PersonInput{
		FirstName:      "E2E",
		LastName:       "Admin",
		IdentityNumber: identity.Generate(),
		Email:          "e2e-admin@personvault.local",
		BirthDate:      born,
		IsAdmin:        true,
		HashedPassword: hash,
	})
	if err != nil {
		t.Fatalf("build admin: %v", err)
	}

	if err := repo.CreatePerson(ctx, admin); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	return admin.IdentityNumber
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := http.Post(baseURL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if token.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", token.TokenType)
	}
	return token.AccessToken
}

func assertMe(t *testing.T, baseURL, token, wantIdentity string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/users/me", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("me request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}

	var me personResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.IdentityNumber != wantIdentity {
		t.Errorf("me identityNumber = %q, want %q", me.IdentityNumber, wantIdentity)
	}
}

func personBody(number, firstName string) string {
	return fmt.Sprintf(`{
		"firstName": %q,
		"lastName": "Mouse",
		"identityNumber": %q,
		"email": "mickey@disney.com",
		"birthDate": "1928-11-18"
	}`, firstName, number)
}

func createPerson(t *testing.T, baseURL, number string) personResponse {
	t.Helper()

	resp, err := http.Post(baseURL+"/users", "application/json", strings.NewReader(personBody(number, "Mickey")))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}

	var created personResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	return created
}

func assertDuplicateRejected(t *testing.T, baseURL, number string) {
	t.Helper()

	resp, err := http.Post(baseURL+"/users", "application/json", strings.NewReader(personBody(number, "Mickey")))
	if err != nil {
		t.Fatalf("duplicate request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Code != "DUPLICATE_IDENTITY" {
		t.Errorf("code = %q, want DUPLICATE_IDENTITY", body.Code)
	}
}

func assertGet(t *testing.T, baseURL, number, wantFirstName string) {
	t.Helper()

	resp, err := http.Get(baseURL + "/users/" + number)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}

	var person personResponse
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		t.Fatalf("decode person: %v", err)
	}
	if person.FirstName != wantFirstName {
		t.Errorf("firstName = %q, want %q", person.FirstName, wantFirstName)
	}
}

func assertUpdate(t *testing.T, baseURL, number string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPut, baseURL+"/users/"+number, strings.NewReader(personBody(number, "Michael")))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("update request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}

	var person personResponse
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		t.Fatalf("decode person: %v", err)
	}
	if person.FirstName != "Michael" {
		t.Errorf("firstName = %q, want Michael", person.FirstName)
	}
}

func assertMismatchRejected(t *testing.T, baseURL, number string) {
	t.Helper()

	other := identity.Generate()
	req, err := http.NewRequest(http.MethodPut, baseURL+"/users/"+other, strings.NewReader(personBody(number, "Michael")))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("mismatch request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d, want 400", resp.StatusCode)
	}

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Code != "IDENTITY_MISMATCH" {
		t.Errorf("code = %q, want IDENTITY_MISMATCH", body.Code)
	}
}

func assertDeleteReturnsRecord(t *testing.T, baseURL, number string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, baseURL+"/users/"+number, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}

	var person personResponse
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		t.Fatalf("decode person: %v", err)
	}
	if person.IdentityNumber == "" {
		t.Error("delete response does not carry the removed record")
	}
}

func assertGone(t *testing.T, baseURL, number string) {
	t.Helper()

	resp, err := http.Get(baseURL + "/users/" + number)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get-after-delete status = %d, want 404", resp.StatusCode)
	}
}
