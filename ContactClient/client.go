// Package ContactClient submits the contact form to the relay and tracks the
// form's state across one submission.
package ContactClient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"Folio/Models"
)

// State is the form's visible state.
type State int

const (
	Idle State = iota
	Sending
	Sent
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Sent:
		return "sent"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrAlreadySending is returned when Submit is called while a request is
	// still outstanding. No request is sent.
	ErrAlreadySending = errors.New("submission already in progress")
	// ErrSubmitFailed covers every failed outcome, rate limiting included.
	ErrSubmitFailed = errors.New("message could not be sent")
)

// Client posts submissions to a relay.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient creates a client for the relay at base, e.g. "http://localhost:8787".
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: httpClient}
}

// Post sends one submission and reports whether the relay accepted it.
func (c *Client) Post(ctx context.Context, sub Models.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/api/contact", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrSubmitFailed, err)
	}

	var result Models.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("%w: status %d", ErrSubmitFailed, res.StatusCode)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 || !result.Ok {
		return fmt.Errorf("%w: status %d", ErrSubmitFailed, res.StatusCode)
	}
	return nil
}

// Form holds the user's input and the state of its submission.
type Form struct {
	client *Client

	mu     sync.Mutex
	fields Models.Submission
	state  State
}

func NewForm(client *Client) *Form {
	return &Form{client: client}
}

// Set replaces the form's input.
func (f *Form) Set(fields Models.Submission) {
	f.mu.Lock()
	f.fields = fields
	f.mu.Unlock()
}

// Fields returns the current input.
func (f *Form) Fields() Models.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit sends the form once. On success the input is cleared and the form
// moves to Sent; on any failure the input is kept and the form moves to
// Failed. It never retries.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == Sending {
		f.mu.Unlock()
		return ErrAlreadySending
	}
	f.state = Sending
	fields := f.fields
	f.mu.Unlock()

	err := f.client.Post(ctx, fields)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Failed
		return err
	}
	f.state = Sent
	f.fields = Models.Submission{}
	return nil
}
