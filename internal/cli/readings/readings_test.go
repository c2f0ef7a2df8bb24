package readings

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/tarot/internal/app"
	"github.com/julianstephens/tarot/internal/cli"
	"github.com/julianstephens/tarot/internal/cli/clitest"
	"github.com/julianstephens/tarot/internal/identity"
	"github.com/julianstephens/tarot/internal/models"
	tarotreadings "github.com/julianstephens/tarot/internal/readings"
	"github.com/julianstephens/tarot/internal/users"
)

func TestDrawCmd_RequiresSession(t *testing.T) {
	ctx, _ := clitest.New(t)

	err := (&DrawCmd{Spread: "three"}).Run(ctx)
	if !errors.Is(err, users.ErrNotSignedIn) {
		t.Errorf("err = %v, want ErrNotSignedIn", err)
	}
}

func TestDrawCmd_WithNote(t *testing.T) {
	ctx, out := clitest.New(t)
	account := clitest.SignUp(t, ctx, "alice")

	if err := (&DrawCmd{Spread: "celtic", Note: "before the interview"}).Run(ctx); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if !strings.Contains(out.String(), "before the interview") {
		t.Errorf("the note should be printed with the reading:\n%s", out.String())
	}

	list, err := ctx.App.Readings.List(ctx.Context(), account.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(list))
	}
	if len(list[0].Cards) != 10 || list[0].NotesText() != "before the interview" {
		t.Errorf("stored reading = %+v", list[0])
	}
}

func TestDailyCmd_OncePerDay(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.SignUp(t, ctx, "alice")

	if err := (&DailyCmd{}).Run(ctx); err != nil {
		t.Fatalf("first daily failed: %v", err)
	}
	if strings.Contains(out.String(), "already") {
		t.Errorf("first draw should be fresh:\n%s", out.String())
	}

	out.Reset()
	if err := (&DailyCmd{}).Run(ctx); err != nil {
		t.Fatalf("second daily failed: %v", err)
	}
	if !strings.Contains(out.String(), "You already drew today's fortune.") {
		t.Errorf("second draw should reuse the fortune:\n%s", out.String())
	}
}

func TestListCmd_FiltersByType(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.SignUp(t, ctx, "alice")
	if _, err := ctx.App.DrawSpread(ctx.Context(), "single"); err != nil {
		t.Fatalf("DrawSpread failed: %v", err)
	}
	if _, _, err := ctx.App.DailyFortune(ctx.Context()); err != nil {
		t.Fatalf("DailyFortune failed: %v", err)
	}

	if err := (&ListCmd{Type: "all"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if n := strings.Count(strings.TrimSpace(out.String()), "\n") + 1; n != 2 {
		t.Errorf("expected 2 rows, got %d:\n%s", n, out.String())
	}

	out.Reset()
	if err := (&ListCmd{Type: "daily"}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if n := strings.Count(strings.TrimSpace(out.String()), "\n") + 1; n != 1 {
		t.Errorf("expected 1 daily row, got %d:\n%s", n, out.String())
	}

	out.Reset()
	if err := (&FavoritesCmd{}).Run(ctx); err != nil {
		t.Fatalf("favorites failed: %v", err)
	}
	if !strings.Contains(out.String(), "No readings found.") {
		t.Errorf("no favorites yet, got:\n%s", out.String())
	}
}

func TestFavoriteCmd_ByPrefix(t *testing.T) {
	ctx, out := clitest.New(t)
	account := clitest.SignUp(t, ctx, "alice")
	reading, err := ctx.App.DrawSpread(ctx.Context(), "three")
	if err != nil {
		t.Fatalf("DrawSpread failed: %v", err)
	}

	if err := (&FavoriteCmd{ID: reading.ID[:8]}).Run(ctx); err != nil {
		t.Fatalf("favorite failed: %v", err)
	}
	if !strings.Contains(out.String(), "Added") {
		t.Errorf("output = %q", out.String())
	}
	favorites, err := ctx.App.Readings.Favorites(ctx.Context(), account.ID)
	if err != nil {
		t.Fatalf("Favorites failed: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ID != reading.ID {
		t.Errorf("favorites = %+v", favorites)
	}

	if err := (&UnfavoriteCmd{ID: reading.ID}).Run(ctx); err != nil {
		t.Fatalf("unfavorite failed: %v", err)
	}
	favorites, _ = ctx.App.Readings.Favorites(ctx.Context(), account.ID)
	if len(favorites) != 0 {
		t.Errorf("expected no favorites, got %d", len(favorites))
	}
}

func TestShowCmd_UnknownID(t *testing.T) {
	ctx, _ := clitest.New(t)
	clitest.SignUp(t, ctx, "alice")

	err := (&ShowCmd{ID: "does-not-exist"}).Run(ctx)
	if !errors.Is(err, tarotreadings.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestShowCmd_OtherUsersReading(t *testing.T) {
	ctx, _ := clitest.New(t)
	clitest.SignUp(t, ctx, "alice")
	reading, err := ctx.App.DrawSpread(ctx.Context(), "single")
	if err != nil {
		t.Fatalf("DrawSpread failed: %v", err)
	}
	clitest.SignUp(t, ctx, "bob")

	err = (&ShowCmd{ID: reading.ID}).Run(ctx)
	if !errors.Is(err, tarotreadings.ErrNotFound) {
		t.Errorf("bob should not see alice's reading, err = %v", err)
	}
}

func TestNoteCmd_FromStdin(t *testing.T) {
	ctx, _ := clitest.New(t)
	account := clitest.SignUp(t, ctx, "alice")
	reading, err := ctx.App.DrawSpread(ctx.Context(), "single")
	if err != nil {
		t.Fatalf("DrawSpread failed: %v", err)
	}
	ctx.In = strings.NewReader("piped note\n")

	if err := (&NoteCmd{ID: reading.ID}).Run(ctx); err != nil {
		t.Fatalf("note failed: %v", err)
	}
	got, err := ctx.App.Readings.Get(ctx.Context(), reading.ID, account.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.NotesText() != "piped note" {
		t.Errorf("notes = %q", got.NotesText())
	}
}

func TestDeleteCmd_Confirmation(t *testing.T) {
	ctx, _ := clitest.New(t)
	account := clitest.SignUp(t, ctx, "alice")
	reading, err := ctx.App.DrawSpread(ctx.Context(), "single")
	if err != nil {
		t.Fatalf("DrawSpread failed: %v", err)
	}

	asked := clitest.StubConfirm(t, false)
	if err := (&DeleteCmd{ID: reading.ID}).Run(ctx); !errors.Is(err, cli.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if len(*asked) != 1 {
		t.Errorf("expected one confirmation prompt, got %v", *asked)
	}
	if _, err := ctx.App.Readings.Get(ctx.Context(), reading.ID, account.ID); err != nil {
		t.Errorf("declined delete should keep the reading: %v", err)
	}

	if err := (&DeleteCmd{ID: reading.ID, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(*asked) != 1 {
		t.Error("--yes should skip the prompt")
	}
	if _, err := ctx.App.Readings.Get(ctx.Context(), reading.ID, account.ID); !errors.Is(err, tarotreadings.ErrNotFound) {
		t.Errorf("reading should be gone, err = %v", err)
	}
}

func TestClearCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	account := clitest.SignUp(t, ctx, "alice")
	for i := 0; i < 2; i++ {
		if _, err := ctx.App.DrawSpread(ctx.Context(), "single"); err != nil {
			t.Fatalf("DrawSpread failed: %v", err)
		}
	}
	if _, _, err := ctx.App.DailyFortune(ctx.Context()); err != nil {
		t.Fatalf("DailyFortune failed: %v", err)
	}

	if err := (&ClearCmd{Type: "reading", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted 2 readings") {
		t.Errorf("output = %q", out.String())
	}

	list, err := ctx.App.Readings.List(ctx.Context(), account.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Type != models.ReadingTypeDaily {
		t.Errorf("only the daily fortune should remain, got %+v", list)
	}
}

func TestResolve_AmbiguousPrefix(t *testing.T) {
	ctx, _ := clitest.New(t, app.WithReadingOptions(tarotreadings.WithIDGenerator(&identity.Sequence{Prefix: "r"})))
	clitest.SignUp(t, ctx, "alice")
	for i := 0; i < 2; i++ {
		if _, err := ctx.App.DrawSpread(ctx.Context(), "single"); err != nil {
			t.Fatalf("DrawSpread failed: %v", err)
		}
	}

	if _, err := resolve(ctx, "r-"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("err = %v, want ErrAmbiguousID", err)
	}
	got, err := resolve(ctx, "r-2")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.ID != "r-2" {
		t.Errorf("resolved %q, want r-2", got.ID)
	}
	if _, err := resolve(ctx, ""); !errors.Is(err, tarotreadings.ErrNotFound) {
		t.Errorf("an empty id should match nothing, err = %v", err)
	}
}
