package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"homeboard/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestDoSendsBearerToken(t *testing.T) {
	var got string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})
	c.SetToken("tok-123")

	if err := c.Do(context.Background(), http.MethodGet, "/api/children", nil, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestDoClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 is ErrUnauthenticated",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnauthenticated) {
					t.Errorf("err = %v", err)
				}
			},
		},
		{
			name:   "403 is ErrEntitlement",
			status: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrEntitlement) {
					t.Errorf("err = %v", err)
				}
			},
		},
		{
			name:   "402 is ErrEntitlement",
			status: http.StatusPaymentRequired,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrEntitlement) {
					t.Errorf("err = %v", err)
				}
			},
		},
		{
			name:   "422 is ValidationError",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("err = %v", err)
				}
				if ve.Message != "bad input" {
					t.Errorf("message = %q", ve.Message)
				}
				if Retryable(err) {
					t.Error("validation errors must not be retryable")
				}
			},
		},
		{
			name:   "503 is ServerError",
			status: http.StatusServiceUnavailable,
			check: func(t *testing.T, err error) {
				var se *ServerError
				if !errors.As(err, &se) {
					t.Fatalf("err = %v", err)
				}
				if !Retryable(err) {
					t.Error("server errors should be retryable")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": "bad input"}`))
			})
			err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id": 1, "name": "Robin"}`))
	})

	var child model.Child
	if err := c.Do(context.Background(), http.MethodGet, "/x", nil, &child); err != nil {
		t.Fatalf("Do after retries: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("upstream hit %d times, want 3", n)
	}
	if child.ID != 1 {
		t.Errorf("child = %+v", child)
	}
}

func TestDoDoesNotRetryValidation(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	err := c.Do(context.Background(), http.MethodPost, "/x", map[string]string{}, nil)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("upstream hit %d times, want 1", n)
	}
}

func TestDoConnectionRefusedIsTransport(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listens here
	err := c.Do(context.Background(), http.MethodGet, "/x", nil, nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if !Retryable(err) {
		t.Error("transport errors should be retryable")
	}
}

func TestDecodeIntoShapes(t *testing.T) {
	t.Run("bare list", func(t *testing.T) {
		var out []model.Child
		if err := decodeInto([]byte(`[{"id":1},{"id":2}]`), &out); err != nil {
			t.Fatal(err)
		}
		if len(out) != 2 {
			t.Errorf("len = %d", len(out))
		}
	})

	t.Run("wrapped list", func(t *testing.T) {
		var out []model.Child
		if err := decodeInto([]byte(`{"items":[{"id":1}]}`), &out); err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 {
			t.Errorf("len = %d", len(out))
		}
	})

	t.Run("single-key wrapped entity", func(t *testing.T) {
		var out model.Child
		if err := decodeInto([]byte(`{"child":{"id":7,"name":"Robin"}}`), &out); err != nil {
			t.Fatal(err)
		}
		if out.ID != 7 {
			t.Errorf("ID = %d", out.ID)
		}
	})

	t.Run("bare entity", func(t *testing.T) {
		var out model.Child
		if err := decodeInto([]byte(`{"id":7,"name":"Robin"}`), &out); err != nil {
			t.Fatal(err)
		}
		if out.ID != 7 {
			t.Errorf("ID = %d", out.ID)
		}
	})

	t.Run("single-key non-object value stays put", func(t *testing.T) {
		var out struct {
			DeletedIDs []int64 `json:"deleted_ids"`
		}
		if err := decodeInto([]byte(`{"deleted_ids":[1,2,3]}`), &out); err != nil {
			t.Fatal(err)
		}
		if len(out.DeletedIDs) != 3 {
			t.Errorf("DeletedIDs = %v", out.DeletedIDs)
		}
	})
}
