// Package clitest builds command contexts over a temporary SQLite profile
// for command tests.
package clitest

import (
	"bytes"
	"context"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/tarot/internal/app"
	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/config"
	"github.com/julianstephens/tarot/internal/deck"
	"github.com/julianstephens/tarot/internal/models"
	"github.com/julianstephens/tarot/internal/notifier"
	"github.com/julianstephens/tarot/internal/users"
)

// New returns a context over a fresh, initialized profile. Output is
// captured in the returned buffer and stdin reads from an empty reader.
func New(t *testing.T, opts ...app.Option) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	settings, err := config.Settings{
		Profile:  filepath.Join(t.TempDir(), "profile.db"),
		Timezone: "UTC",
	}.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return WithSettings(t, settings, opts...)
}

// WithSettings is New for already resolved settings.
func WithSettings(t *testing.T, settings config.Settings, opts ...app.Option) (*cli.Context, *bytes.Buffer) {
	t.Helper()

	store, err := settings.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Ctx:      context.Background(),
		Settings: settings,
		Store:    store,
		Out:      out,
		In:       strings.NewReader(""),
	}
	ctx.Open(append([]app.Option{
		app.WithNotifier(notifier.New()),
		app.WithDeck(deck.New(rand.New(rand.NewPCG(1, 2)))),
		app.WithUserOptions(users.WithHashCost(bcrypt.MinCost)),
	}, opts...)...)
	return ctx, out
}

// SignUp registers username with password "pw" and leaves them signed in.
func SignUp(t *testing.T, ctx *cli.Context, username string) models.Account {
	t.Helper()
	account, err := ctx.App.Users.SignUp(ctx.Context(), username, "pw")
	if err != nil {
		t.Fatalf("SignUp(%q) failed: %v", username, err)
	}
	return account
}

// StubConfirm makes cli.Confirm answer answer until the test ends and
// records the titles it was asked.
func StubConfirm(t *testing.T, answer bool) *[]string {
	t.Helper()
	var asked []string
	old := cli.Confirm
	cli.Confirm = func(title, description string) (bool, error) {
		asked = append(asked, title)
		return answer, nil
	}
	t.Cleanup(func() { cli.Confirm = old })
	return &asked
}

// StubPassword makes cli.PromptPassword return password until the test
// ends.
func StubPassword(t *testing.T, password string) {
	t.Helper()
	old := cli.PromptPassword
	cli.PromptPassword = func(string, bool) (string, error) { return password, nil }
	t.Cleanup(func() { cli.PromptPassword = old })
}
