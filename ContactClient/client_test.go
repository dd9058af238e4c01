package ContactClient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Folio/Models"
)

var ada = Models.Submission{
	Name:    "Ada Lovelace",
	Email:   "ada@lovelace.dev",
	Subject: "Hi",
	Message: "Hello",
}

func relay(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/contact", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got Models.Submission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, ada, got)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestForm_Submit(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    State
		wantErr bool
	}{
		{"ok", http.StatusOK, `{"ok":true}`, Sent, false},
		{"validation", http.StatusBadRequest, `{"ok":false,"error":"Missing fields"}`, Failed, true},
		{"rate limited", http.StatusTooManyRequests, `{"ok":false,"error":"Too many requests"}`, Failed, true},
		{"transport", http.StatusInternalServerError, `{"ok":false,"error":"Email failed"}`, Failed, true},
		{"malformed body", http.StatusOK, `<html>`, Failed, true},
		{"ok false with 200", http.StatusOK, `{"ok":false}`, Failed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := relay(t, tt.status, tt.body)
			form := NewForm(NewClient(srv.URL+"/", srv.Client()))
			form.Set(ada)
			assert.Equal(t, Idle, form.State())

			err := form.Submit(context.Background())
			assert.Equal(t, tt.want, form.State())
			assert.Equal(t, int32(1), hits.Load())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSubmitFailed)
				assert.Equal(t, ada, form.Fields(), "input is preserved on failure")
			} else {
				require.NoError(t, err)
				assert.Equal(t, Models.Submission{}, form.Fields(), "input is cleared on success")
			}
		})
	}
}

func TestForm_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	form := NewForm(NewClient(url, nil))
	form.Set(ada)

	err := form.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Equal(t, Failed, form.State())
	assert.Equal(t, ada, form.Fields())
}

func TestForm_RejectsDuplicateSubmit(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		close(arrived)
		<-release
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	form := NewForm(NewClient(srv.URL, srv.Client()))
	form.Set(ada)

	done := make(chan error, 1)
	go func() { done <- form.Submit(context.Background()) }()

	<-arrived
	assert.Equal(t, Sending, form.State())
	assert.ErrorIs(t, form.Submit(context.Background()), ErrAlreadySending)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Sent, form.State())
	assert.Equal(t, int32(1), hits.Load())
}

func TestForm_ResubmitAfterFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"ok":false,"error":"Email failed"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	form := NewForm(NewClient(srv.URL, srv.Client()))
	form.Set(ada)

	assert.Error(t, form.Submit(context.Background()))
	assert.Equal(t, Failed, form.State())
	assert.Equal(t, int32(1), calls.Load(), "no automatic retry")

	require.NoError(t, form.Submit(context.Background()))
	assert.Equal(t, Sent, form.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "sending", Sending.String())
	assert.Equal(t, "sent", Sent.String())
	assert.Equal(t, "error", Failed.String())
}
