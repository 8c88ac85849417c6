package notifications_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trisetra/internal/config"
	"trisetra/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Notify(context.Background(), notifications.Notification{Title: "x"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsHeaders(t *testing.T) {
	tests := []struct {
		name           string
		notification   notifications.Notification
		expectTitle    string
		expectTags     string
		expectPriority string
	}{
		{
			name: "work order updated",
			notification: notifications.Notification{
				Event:   notifications.EventWorkOrderUpdated,
				Title:   "Work order updated",
				Message: "Work Order status set to: completed",
			},
			expectTitle: "trisetra - Work order updated",
			expectTags:  "trisetra,workorder_updated",
		},
		{
			name: "update failed",
			notification: notifications.Notification{
				Event:   notifications.EventWorkOrderUpdateFailed,
				Title:   "Could not update reconstruction status",
				Message: "An Error occurred while updating reconstruction status",
			},
			expectTitle:    "trisetra - Could not update reconstruction status",
			expectTags:     "trisetra,workorder_update_failed,alert",
			expectPriority: "high",
		},
		{
			name:           "test",
			notification:   notifications.Notification{Event: notifications.EventTest, Title: "Test", Message: "ping"},
			expectTitle:    "trisetra - Test",
			expectTags:     "trisetra,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotTitle, gotTags, gotPriority, gotBody string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTitle = r.Header.Get("Title")
				gotTags = r.Header.Get("Tags")
				gotPriority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			svc := notifications.NewService(&cfg)
			if err := svc.Notify(context.Background(), tc.notification); err != nil {
				t.Fatalf("Notify: %v", err)
			}
			if gotTitle != tc.expectTitle {
				t.Fatalf("title = %q, want %q", gotTitle, tc.expectTitle)
			}
			if gotTags != tc.expectTags {
				t.Fatalf("tags = %q, want %q", gotTags, tc.expectTags)
			}
			if gotPriority != tc.expectPriority {
				t.Fatalf("priority = %q, want %q", gotPriority, tc.expectPriority)
			}
			if gotBody != tc.notification.Message {
				t.Fatalf("body = %q", gotBody)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic closed", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	err := notifications.NewService(&cfg).Notify(context.Background(), notifications.Notification{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestConsoleWritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	console := notifications.NewConsole(&buf)
	_ = console.Notify(context.Background(), notifications.Notification{
		Event:   notifications.EventWorkOrderUpdated,
		Title:   "Work order updated",
		Message: "Work Order status set to: completed",
	})
	_ = console.Notify(context.Background(), notifications.Notification{
		Event: notifications.EventJobFailed,
		Title: "Error",
	})
	want := "✔ Work order updated: Work Order status set to: completed\n✖ Error\n"
	if buf.String() != want {
		t.Fatalf("console output = %q, want %q", buf.String(), want)
	}
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, notifications.Notification) error {
	return errors.New("down")
}

func TestMultiDeliversToAllAndJoinsErrors(t *testing.T) {
	rec := &notifications.Recorder{}
	n := notifications.Multi(failingNotifier{}, nil, rec)
	err := n.Notify(context.Background(), notifications.Notification{Title: "Request sent"})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if got := rec.Notifications(); len(got) != 1 || got[0].Title != "Request sent" {
		t.Fatalf("recorder got %v", got)
	}
}
