// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/personvault/personvault/internal/model"
)

// PersonRequest represents the request body for creating or replacing
// a person record.
type PersonRequest struct {
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	IdentityNumber string     `json:"identityNumber"`
	Email          string     `json:"email"`
	BirthDate      model.Date `json:"birthDate"`
}

// ToInput converts the request into construction input.
func (r *PersonRequest) ToInput() model.PersonInput {
	return model.PersonInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		IdentityNumber: r.IdentityNumber,
		Email:          r.Email,
		BirthDate:      r.BirthDate,
	}
}

// PersonResponse represents a person in API responses.
// Credential fields are never exposed.
type PersonResponse struct {
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	IdentityNumber string     `json:"identityNumber"`
	Email          string     `json:"email"`
	BirthDate      model.Date `json:"birthDate"`
}

// TokenResponse represents an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToPersonResponse converts a Person model to PersonResponse DTO.
func ToPersonResponse(person *model.Person) *PersonResponse {
	return &PersonResponse{
		FirstName:      person.FirstName,
		LastName:       person.LastName,
		IdentityNumber: person.IdentityNumber,
		Email:          person.Email,
		BirthDate:      person.BirthDate,
	}
}

// ToPersonListResponse converts a slice of Person models.
func ToPersonListResponse(people []*model.Person) []PersonResponse {
	responses := make([]PersonResponse, len(people))
	for i, person := range people {
		responses[i] = *ToPersonResponse(person)
	}
	return responses
}

// ToTokenResponse converts a Token model.
func ToTokenResponse(token model.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	}
}
