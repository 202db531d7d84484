// Package model holds the users API domain types.
package model

// User is the only persisted entity.
//
// ID is assigned once at creation and never changes. Name and Email are
// overwritten in place by updates.
type User struct {
	ID    string `json:"id" dynamodbav:"id"`
	Name  string `json:"name" dynamodbav:"name"`
	Email string `json:"email" dynamodbav:"email"`
}

// UserInput is the validated, normalized payload of create and update requests.
type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser combines a freshly generated id with validated input.
func NewUser(id string, input UserInput) User {
	return User{
		ID:    id,
		Name:  input.Name,
		Email: input.Email,
	}
}
