package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// replyFields is the documented contract for picking the reply text out of a
// JSON response. "message" wins; "response" and "text" are aliases older
// webhook deployments answer with.
var replyFields = []string{"message", "response", "text"}

// fallbackReply keeps the transcript from ever showing an empty remote bubble.
const fallbackReply = "(empty reply)"

type webhookStatusError struct {
	status int
}

func (e *webhookStatusError) Error() string {
	return fmt.Sprintf("webhook returned HTTP %d", e.status)
}

type webhookClient struct {
	url        string
	payloadKey string
	client     *http.Client
}

func newWebhookClient(url, payloadKey string) webhookClient {
	// No Timeout: once issued, a submission runs to whatever end the
	// transport gives it, and the settle handler reacts to that.
	return webhookClient{
		url:        url,
		payloadKey: payloadKey,
		client:     &http.Client{},
	}
}

// send posts one message and normalizes whatever comes back into display
// text. Non-2xx statuses and transport failures both return errors; the
// caller treats them uniformly apart from the notification wording.
func (c webhookClient) send(text string) (string, error) {
	buf, err := json.Marshal(map[string]string{c.payloadKey: text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("webhook response unreadable: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &webhookStatusError{status: resp.StatusCode}
	}
	return extractReply(body), nil
}

// extractReply walks the fallback chain: known JSON fields in priority order,
// then the parsed value's textual form, then the raw body, then
// fallbackReply.
func extractReply(body []byte) string {
	raw := strings.TrimSpace(string(body))
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nonEmptyOr(raw, fallbackReply)
	}
	switch value := parsed.(type) {
	case map[string]any:
		for _, field := range replyFields {
			if text, ok := value[field].(string); ok && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text)
			}
		}
		if compact, err := json.Marshal(value); err == nil {
			return nonEmptyOr(strings.TrimSpace(string(compact)), fallbackReply)
		}
		return nonEmptyOr(raw, fallbackReply)
	case string:
		return nonEmptyOr(strings.TrimSpace(value), fallbackReply)
	default:
		return nonEmptyOr(raw, fallbackReply)
	}
}

// failureNotice turns a settle error into the one user-visible notification
// for the submission.
func failureNotice(err error) string {
	var statusErr *webhookStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return "cannot reach webhook: " + compactSingleLine(err.Error(), 120)
}

func nonEmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
