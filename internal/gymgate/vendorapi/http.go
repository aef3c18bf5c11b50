package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPClient implements Client against the vendor proxy endpoint.
type HTTPClient struct {
	httpClient *http.Client
}

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope is the common prefix of every action request.
type envelope struct {
	Action    string `json:"action"`
	AppKey    string `json:"appKey"`
	SecretKey string `json:"secretKey"`
}

// respHeader is the common prefix of every action response.
type respHeader struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// do posts an action envelope to the branch's proxy URL and decodes the
// payload into out. A non-200 status or success=false becomes an *APIError.
func (c *HTTPClient) do(ctx context.Context, creds Credentials, action string, params map[string]any, out any) error {
	body := map[string]any{
		"action":    action,
		"appKey":    creds.AppKey,
		"secretKey": creds.AppSecret,
	}
	for k, v := range params {
		body[k] = v
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.APIURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s call: %w", action, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Action: action, StatusCode: resp.StatusCode, Message: string(b)}
	}

	var hdr respHeader
	if err := json.Unmarshal(b, &hdr); err != nil {
		return fmt.Errorf("parse %s response: %w", action, err)
	}
	if !hdr.Success {
		return &APIError{Action: action, Message: hdr.Message}
	}

	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("parse %s payload: %w", action, err)
		}
	}
	return nil
}

func (c *HTTPClient) RequestToken(ctx context.Context, creds Credentials) (Token, error) {
	var payload struct {
		AccessToken string `json:"accessToken"`
		ExpireTime  int64  `json:"expireTime"` // seconds
		AreaDomain  string `json:"areaDomain"`
	}
	if err := c.do(ctx, creds, "get-token", nil, &payload); err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: payload.AccessToken,
		ExpiresIn:   payload.ExpireTime,
		AreaDomain:  payload.AreaDomain,
	}, nil
}

func (c *HTTPClient) Subscribe(ctx context.Context, creds Credentials, accessToken string, eventTypes []string) (string, error) {
	var payload struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	params := map[string]any{
		"accessToken": accessToken,
		"eventTypes":  eventTypes,
	}
	if err := c.do(ctx, creds, "subscribe", params, &payload); err != nil {
		return "", err
	}
	return payload.SubscriptionID, nil
}

// wireMessage is the vendor's on-the-wire message shape.
type wireMessage struct {
	Offset     string `json:"offset"`
	EventID    string `json:"eventId,omitempty"`
	EventType  string `json:"eventType"`
	DeviceSN   string `json:"deviceSn,omitempty"`
	EventTime  string `json:"eventTime,omitempty"` // RFC 3339
	DoorID     string `json:"doorId,omitempty"`
	DoorName   string `json:"doorName,omitempty"`
	PersonID   string `json:"personId,omitempty"`
	PersonName string `json:"personName,omitempty"`
	CardNo     string `json:"cardNo,omitempty"`
}

func (c *HTTPClient) PollMessages(ctx context.Context, creds Credentials, accessToken, offset string, limit int) ([]Message, error) {
	var payload struct {
		Messages []wireMessage `json:"messages"`
	}
	params := map[string]any{
		"accessToken": accessToken,
		"limit":       limit,
	}
	if offset != "" {
		params["offset"] = offset
	}
	if err := c.do(ctx, creds, "pollMessages", params, &payload); err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(payload.Messages))
	for _, wm := range payload.Messages {
		m := Message{
			Offset:     wm.Offset,
			EventID:    wm.EventID,
			EventType:  wm.EventType,
			DeviceSN:   wm.DeviceSN,
			DoorID:     wm.DoorID,
			DoorName:   wm.DoorName,
			PersonID:   wm.PersonID,
			PersonName: wm.PersonName,
			CardNo:     wm.CardNo,
		}
		// Unparseable device timestamps fall back to receipt time so a
		// malformed message still lands in the audit trail.
		if t, err := time.Parse(time.RFC3339, wm.EventTime); err == nil {
			m.EventTime = t.UTC()
		} else {
			m.EventTime = time.Now().UTC()
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (c *HTTPClient) AcknowledgeOffset(ctx context.Context, creds Credentials, accessToken, offset string) error {
	params := map[string]any{
		"accessToken": accessToken,
		"offset":      offset,
	}
	return c.do(ctx, creds, "acknowledgeOffset", params, nil)
}

func (c *HTTPClient) RegisterPerson(ctx context.Context, creds Credentials, accessToken string, p Person) (string, error) {
	var payload struct {
		PersonID string `json:"personId"`
	}
	params := map[string]any{
		"accessToken": accessToken,
		"personName":  p.Name,
		"gender":      p.Gender,
		"cardNo":      p.CardNo,
		"phoneNo":     p.Phone,
		"email":       p.Email,
	}
	if p.PhotoURL != "" {
		params["faceData"] = p.PhotoURL
	}
	if err := c.do(ctx, creds, "register-person", params, &payload); err != nil {
		return "", err
	}
	return payload.PersonID, nil
}

func (c *HTTPClient) AssignPrivileges(ctx context.Context, creds Credentials, accessToken, personID, doorID string) error {
	params := map[string]any{
		"accessToken": accessToken,
		"personId":    personID,
		"doorId":      doorID,
	}
	return c.do(ctx, creds, "assign-privileges", params, nil)
}
