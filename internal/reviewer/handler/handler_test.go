package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ensemble/internal/reviewer/service"
	"ensemble/internal/reviewer/store"
	"ensemble/internal/reviewer/token"
	"ensemble/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()

	reviewers := store.NewInMemory()
	tokens := token.NewService("test-signing-key", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(reviewers, tokens, service.WithLogger(logger))

	_, err := svc.Register(context.Background(), "lead@example.edu", "Section Lead", "correct horse")
	if err != nil {
		t.Fatalf("seed reviewer: %v", err)
	}

	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return router
}

func TestLogin(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "lead@example.edu", "password": "correct horse"})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	session := testutil.UnmarshalResponse[service.Session](t, rr)
	if session.Token == "" {
		t.Fatal("login response has no token")
	}
	if session.Reviewer == nil || session.Reviewer.Email != "lead@example.edu" {
		t.Fatalf("login response reviewer: %+v", session.Reviewer)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "lead@example.edu", "password": "battery staple"})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestLoginUnknownEmail(t *testing.T) {
	router := newRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		map[string]string{"email": "ghost@example.edu", "password": "whatever"})
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}
