// Package vendorapi talks to the access-control vendor's HTTP proxy.
// Every call posts a JSON action envelope and decodes a
// {success, message, ...payload} response; the vendor's native signing
// scheme stays behind the proxy.
package vendorapi

import (
	"context"
	"fmt"
	"time"
)

// Credentials identifies one branch's application on the vendor side.
type Credentials struct {
	APIURL    string
	AppKey    string
	AppSecret string
}

// Token is the result of a credential exchange.
type Token struct {
	AccessToken string
	ExpiresIn   int64  // seconds
	AreaDomain  string // routing hint for subsequent calls
}

// Message is one pending event from the vendor's subscription queue.
type Message struct {
	Offset     string
	EventID    string
	EventType  string // vendor taxonomy, e.g. "doorOpen"
	DeviceSN   string
	EventTime  time.Time
	DoorID     string
	DoorName   string
	PersonID   string
	PersonName string
	CardNo     string
}

// Person is the payload for registering a member on physical devices.
type Person struct {
	Name     string
	Gender   string
	CardNo   string
	Phone    string
	Email    string
	PhotoURL string
}

type Client interface {
	RequestToken(ctx context.Context, creds Credentials) (Token, error)
	Subscribe(ctx context.Context, creds Credentials, accessToken string, eventTypes []string) (string, error)
	PollMessages(ctx context.Context, creds Credentials, accessToken, offset string, limit int) ([]Message, error)
	AcknowledgeOffset(ctx context.Context, creds Credentials, accessToken, offset string) error
	RegisterPerson(ctx context.Context, creds Credentials, accessToken string, p Person) (string, error)
	AssignPrivileges(ctx context.Context, creds Credentials, accessToken, personID, doorID string) error
}

// APIError carries the vendor's rejection message for a single action.
type APIError struct {
	Action     string
	StatusCode int // 0 when the response was a 200 with success=false
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("vendor %s: status %d: %s", e.Action, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("vendor %s: %s", e.Action, e.Message)
}
