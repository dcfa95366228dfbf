package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/cowsbulls/internal/game"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "test.db"), "test-secret")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, openTestSQLite(t)) })
}

func TestStoreSaveGet(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		e := game.New()
		_ = e.SetSecret(game.Player1, "1234")
		if err := s.Save(ctx, "g1", e); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Get(ctx, "g1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.SecretSet(game.Player1) || got.SecretSet(game.Player2) {
			t.Errorf("restored secrets wrong")
		}

		// Returned engines are copies.
		_ = got.SetSecret(game.Player2, "5678")
		again, _ := s.Get(ctx, "g1")
		if again.SecretSet(game.Player2) {
			t.Errorf("mutating a Get result changed the store")
		}

		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get missing: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreUpdate(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_ = s.Save(ctx, "g1", game.New())

		err := s.Update(ctx, "g1", func(e *game.Engine) error {
			if err := e.SetSecret(game.Player1, "1234"); err != nil {
				return err
			}
			return e.SetSecret(game.Player2, "5678")
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		// A failing fn writes nothing, even if it mutated the engine first.
		err = s.Update(ctx, "g1", func(e *game.Engine) error {
			_ = e.Start()
			_, err := e.SubmitGuess(game.Player2, "1234")
			return err
		})
		if !errors.Is(err, game.ErrIllegalState) {
			t.Fatalf("Update err = %v, want ErrIllegalState", err)
		}
		got, _ := s.Get(ctx, "g1")
		if got.Phase() != game.AwaitingSecrets || !got.SecretsSet() {
			t.Errorf("phase = %s secretsSet = %v after failed update", got.Phase(), got.SecretsSet())
		}

		if err := s.Update(ctx, "nope", func(*game.Engine) error { return nil }); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update missing: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreConcurrentUpdates(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		e := game.New()
		_ = e.SetSecret(game.Player1, "1234")
		_ = e.SetSecret(game.Player2, "5678")
		_ = e.Start()
		_ = s.Save(ctx, "g1", e)

		// Each worker submits for whoever's turn it is; no update may be lost.
		const workers = 8
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Update(ctx, "g1", func(e *game.Engine) error {
					_, err := e.SubmitGuess(e.Turn(), "0000")
					return err
				})
				if err != nil {
					t.Errorf("Update: %v", err)
				}
			}()
		}
		wg.Wait()

		got, _ := s.Get(ctx, "g1")
		if n := got.GuessCount(game.Player1) + got.GuessCount(game.Player2); n != workers {
			t.Fatalf("total guesses = %d, want %d", n, workers)
		}
	})
}

func TestStoreDeleteAndPurge(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_ = s.Save(ctx, "old", game.New())
		_ = s.Save(ctx, "gone", game.New())
		if err := s.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete twice: %v", err)
		}
		if _, err := s.Get(ctx, "gone"); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted session still present")
		}

		n, err := s.Purge(ctx, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("Purge: %v", err)
		}
		if n != 1 {
			t.Errorf("Purge removed %d, want 1", n)
		}
		if n, _ := s.Purge(ctx, time.Now().Add(-time.Hour)); n != 0 {
			t.Errorf("second Purge removed %d, want 0", n)
		}
	})
}

func TestSQLiteSealsState(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	e := game.New()
	_ = e.SetSecret(game.Player1, "9173")
	if err := s.Save(ctx, "g1", e); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var blob []byte
	if err := s.db.QueryRow(`SELECT state FROM sessions WHERE id='g1'`).Scan(&blob); err != nil {
		t.Fatalf("select: %v", err)
	}
	if bytes.Contains(blob, []byte("9173")) || bytes.Contains(blob, []byte("player1")) {
		t.Fatalf("stored state is readable: %q", blob)
	}
}

func TestSQLiteWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k.db")
	a, err := OpenSQLite(path, "key-a")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = a.Save(context.Background(), "g1", game.New())
	_ = a.Close()

	b, err := OpenSQLite(path, "key-b")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if _, err := b.Get(context.Background(), "g1"); err == nil {
		t.Fatalf("Get with wrong key succeeded")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := openTestSQLite(t)
	if err := migrate(s.db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("_migrations rows = %d, want 1", n)
	}
}

func TestSealerRoundTrip(t *testing.T) {
	box := newSealer("pass")
	blob, err := box.seal([]byte("hello"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	plain, err := box.open(blob)
	if err != nil || string(plain) != "hello" {
		t.Fatalf("open = %q, %v", plain, err)
	}
	blob[len(blob)-1] ^= 0xff
	if _, err := box.open(blob); err == nil {
		t.Errorf("tampered blob opened")
	}
	if _, err := box.open([]byte("short")); err == nil {
		t.Errorf("short blob opened")
	}
}
