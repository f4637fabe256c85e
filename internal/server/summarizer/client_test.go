package summarizer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Summarize_Success(t *testing.T) {
	var gotAuth string
	var gotNames []string
	var gotBodies []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		reader, err := r.MultipartReader()
		if err != nil {
			t.Errorf("multipart reader: %v", err)
			return
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("next part: %v", err)
				return
			}
			data, _ := io.ReadAll(part)
			gotNames = append(gotNames, part.FileName())
			gotBodies = append(gotBodies, string(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary": "  two pages about sorting  "}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	images := []Image{
		{Data: []byte("first"), ContentType: "image/jpeg"},
		{Data: []byte("second"), ContentType: "image/png"},
	}

	got, err := c.Summarize(context.Background(), images)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "two pages about sorting" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if len(gotNames) != 2 || gotNames[0] != "page-0" || gotNames[1] != "page-1" {
		t.Fatalf("parts out of order: %v", gotNames)
	}
	if gotBodies[0] != "first" || gotBodies[1] != "second" {
		t.Fatalf("unexpected part bodies: %v", gotBodies)
	}
}

func TestClient_Summarize_ServerError_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), []Image{{Data: []byte("x"), ContentType: "image/jpeg"}})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("want ErrTransient, got %v", err)
	}
}

func TestClient_Summarize_RateLimited_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("want ErrTransient, got %v", err)
	}
}

func TestClient_Summarize_QuotaExceeded_Permanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "insufficient quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), nil)
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("want ErrPermanent for exhausted quota, got %v", err)
	}
}

func TestClient_Summarize_ContentRejected_Permanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unreadable handwriting", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), nil)
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("want ErrPermanent, got %v", err)
	}
}

func TestClient_Summarize_MalformedResponse_Permanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), nil)
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("want ErrPermanent, got %v", err)
	}
}

func TestClient_Summarize_EmptySummary_Permanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary": "   "}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), nil)
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("want ErrPermanent, got %v", err)
	}
}

func TestClient_Summarize_ConnectionRefused_Transient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Summarize(context.Background(), nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("want ErrTransient, got %v", err)
	}
}
