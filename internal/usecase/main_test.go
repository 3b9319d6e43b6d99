package usecase

import (
	"testing"
	"time"

	"quizgate/internal/infra/security"
	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

var testLogger = zerolog.Nop()

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), 2*time.Second, &testLogger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return st
}

func newTestCodec() *security.TokenCodec {
	return security.NewTokenCodec("test-secret")
}
