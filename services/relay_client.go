package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Messenger is the narrow contract to the chat platform. The match engine
// only stores and returns the opaque refs these calls produce; it never
// interprets them. A nil Messenger means the tenant runs without a chat
// surface and all messaging side effects are skipped.
type Messenger interface {
	SendMessage(ctx context.Context, channelRef, content string) (messageRef string, err error)
	StartThread(ctx context.Context, channelRef, messageRef, name string) (threadRef string, err error)
	AddThreadMember(ctx context.Context, threadRef, memberRef string) error
	DeleteMessage(ctx context.Context, channelRef, messageRef string) error
	DeleteThread(ctx context.Context, threadRef string) error
}

// RelayClient talks to the chat relay service that owns the actual platform
// connection. All calls carry the service token.
type RelayClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewRelayClient(baseURL, token string) *RelayClient {
	return &RelayClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type relayMessageResponse struct {
	MessageRef string `json:"message_ref"`
}

type relayThreadResponse struct {
	ThreadRef string `json:"thread_ref"`
}

func (c *RelayClient) SendMessage(ctx context.Context, channelRef, content string) (string, error) {
	var out relayMessageResponse
	err := c.post(ctx, "/relay/messages", map[string]any{
		"channel_ref": channelRef,
		"content":     content,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.MessageRef, nil
}

func (c *RelayClient) StartThread(ctx context.Context, channelRef, messageRef, name string) (string, error) {
	var out relayThreadResponse
	err := c.post(ctx, "/relay/threads", map[string]any{
		"channel_ref": channelRef,
		"message_ref": messageRef,
		"name":        name,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ThreadRef, nil
}

func (c *RelayClient) AddThreadMember(ctx context.Context, threadRef, memberRef string) error {
	return c.post(ctx, fmt.Sprintf("/relay/threads/%s/members", threadRef), map[string]any{
		"member_ref": memberRef,
	}, nil)
}

func (c *RelayClient) DeleteMessage(ctx context.Context, channelRef, messageRef string) error {
	return c.post(ctx, "/relay/messages/delete", map[string]any{
		"channel_ref": channelRef,
		"message_ref": messageRef,
	}, nil)
}

func (c *RelayClient) DeleteThread(ctx context.Context, threadRef string) error {
	return c.post(ctx, "/relay/threads/delete", map[string]any{
		"thread_ref": threadRef,
	}, nil)
}

func (c *RelayClient) post(ctx context.Context, path string, body map[string]any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Relay %s returned %d: %s", path, resp.StatusCode, string(respBody))
		return fmt.Errorf("relay call failed: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return err
		}
	}
	return nil
}
