package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hardbound/stacks/internal/models"
	"github.com/hardbound/stacks/internal/services"
	"github.com/hardbound/stacks/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newService(t *testing.T, handler http.HandlerFunc) *services.LibraryService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return services.NewLibraryService(server.URL, server.Client(), 0)
}

func TestLogin(t *testing.T) {
	t.Run("success maps the wire grant", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/login", r.URL.Path)

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "alice", creds["username"])

			json.NewEncoder(w).Encode(map[string]any{
				"token":      "abc123",
				"expires_at": time.Now().Add(time.Hour),
				"user": map[string]any{
					"id":       "u-1",
					"username": "alice",
					"email":    "alice@example.com",
					"role":     "librarian",
				},
			})
		})

		grant, err := svc.Login(context.Background(), "alice", "hunter2")
		require.NoError(t, err)

		assert.Equal(t, "abc123", grant.Token.AccessToken)
		assert.Equal(t, "Bearer", grant.Token.TokenType)
		assert.Equal(t, "alice", grant.Identity.Username)
		assert.True(t, grant.Identity.IsStaff())
	})

	t.Run("401 becomes invalid credentials", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad credentials"})
		})

		_, err := svc.Login(context.Background(), "alice", "wrong")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("a grant without a token is rejected", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{"id": "u-1", "username": "alice", "email": "a@example.com"},
			})
		})

		_, err := svc.Login(context.Background(), "alice", "hunter2")
		require.ErrorIs(t, err, shared.ErrAuthFailed)
	})
}

func TestFetchCurrentProfile(t *testing.T) {
	t.Run("sends the bearer token and maps the identity", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/me", r.URL.Path)
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(map[string]any{
				"id":       "u-1",
				"username": "alice",
				"email":    "alice@example.com",
				"role":     "member",
			})
		})

		identity, err := svc.FetchCurrentProfile(context.Background(), &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username)
	})

	t.Run("tolerates the legacy name field", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "u-1",
				"name":  "alice",
				"email": "alice@example.com",
			})
		})

		identity, err := svc.FetchCurrentProfile(context.Background(), &oauth2.Token{AccessToken: "tok"})
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username)
		assert.Equal(t, models.RoleMember, identity.Role, "missing role defaults to member")
	})

	t.Run("nil token short-circuits without a request", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request should be made")
		})

		_, err := svc.FetchCurrentProfile(context.Background(), nil)
		require.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})

	t.Run("401 surfaces as not authenticated", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := svc.FetchCurrentProfile(context.Background(), &oauth2.Token{AccessToken: "stale"})
		require.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})
}

func TestBookOperations(t *testing.T) {
	t.Run("list passes the search query through", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/books", r.URL.Path)
			require.Equal(t, "dune", r.URL.Query().Get("q"))
			json.NewEncoder(w).Encode([]models.Book{{ID: "b-1", Title: "Dune"}})
		})

		books, err := svc.ListBooks(context.Background(), "dune")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Dune", books[0].Title)
	})

	t.Run("get maps 404 to the book sentinel", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "book not found"})
		})

		_, err := svc.GetBook(context.Background(), "nope")
		require.ErrorIs(t, err, shared.ErrBookNotFound)
	})

	t.Run("create validates before sending", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("invalid book should not reach the backend")
		})

		_, err := svc.CreateBook(context.Background(), models.Book{})
		require.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestLoanOperations(t *testing.T) {
	t.Run("checkout posts the pair of ids", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/loans", r.URL.Path)

			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, "b-1", payload["book_id"])
			require.Equal(t, "u-1", payload["user_id"])

			json.NewEncoder(w).Encode(models.Loan{ID: "l-1", BookID: "b-1", UserID: "u-1"})
		})

		loan, err := svc.CheckoutLoan(context.Background(), "b-1", "u-1")
		require.NoError(t, err)
		assert.Equal(t, "l-1", loan.ID)
	})

	t.Run("exhausted copies map to the dedicated sentinel", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "no copies available"})
		})

		_, err := svc.CheckoutLoan(context.Background(), "b-1", "u-1")
		require.ErrorIs(t, err, shared.ErrNoCopiesAvailable)
	})

	t.Run("return uses PATCH on the loan resource", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPatch, r.Method)
			require.Equal(t, "/loans/l-1/return", r.URL.Path)
			json.NewEncoder(w).Encode(models.Loan{ID: "l-1"})
		})

		loan, err := svc.ReturnLoan(context.Background(), "l-1")
		require.NoError(t, err)
		assert.Equal(t, "l-1", loan.ID)
	})

	t.Run("active filter is passed as a query param", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "active", r.URL.Query().Get("status"))
			json.NewEncoder(w).Encode([]models.Loan{})
		})

		_, err := svc.ListLoans(context.Background(), true)
		require.NoError(t, err)
	})
}

func TestRequestErrors(t *testing.T) {
	t.Run("deadline expiry maps to the timeout sentinel", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := svc.Stats(ctx)
		require.ErrorIs(t, err, shared.ErrTimeout)
	})

	t.Run("server errors map to the api sentinel with status", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "boom"})
		})

		_, err := svc.Stats(context.Background())
		require.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.Contains(t, err.Error(), "boom")
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("unreachable host maps to the api sentinel", func(t *testing.T) {
		svc := services.NewLibraryService("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, 0)

		_, err := svc.Stats(context.Background())
		require.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}

func TestSetToken(t *testing.T) {
	t.Run("installed token rides along on catalog calls", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode([]models.Author{})
		})

		svc.SetToken(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
		_, err := svc.ListAuthors(context.Background())
		require.NoError(t, err)
	})

	t.Run("clearing the token stops sending it", func(t *testing.T) {
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Empty(t, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode([]models.Author{})
		})

		svc.SetToken(&oauth2.Token{AccessToken: "tok"})
		svc.SetToken(nil)
		require.Nil(t, svc.Token())

		_, err := svc.ListAuthors(context.Background())
		require.NoError(t, err)
	})
}
