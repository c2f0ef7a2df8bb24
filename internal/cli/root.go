package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tarot/internal/app"
	"github.com/julianstephens/tarot/internal/backup"
	"github.com/julianstephens/tarot/internal/config"
	"github.com/julianstephens/tarot/internal/logger"
	"github.com/julianstephens/tarot/internal/storage"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
var ErrCancelled = errors.New("cancelled")

type Context struct {
	Ctx      context.Context
	Settings config.Settings
	Store    storage.Provider
	App      *app.App
	Out      io.Writer
	In       io.Reader
}

// Open builds the repositories over the loaded store.
func (c *Context) Open(opts ...app.Option) {
	opts = append([]app.Option{app.WithJournalScope(c.Settings.Scope())}, opts...)
	c.App = app.New(c.Store, opts...)
}

// Context returns the command's context.Context.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Stdin returns the input stream commands read piped text from.
func (c *Context) Stdin() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Print(args ...interface{}) {
	fmt.Fprint(c.out(), args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// BackupManager returns the manager for this profile's backup directory.
func (c *Context) BackupManager() (*backup.Manager, error) {
	dir, err := c.Settings.ProfileDir()
	if err != nil {
		return nil, err
	}
	return backup.NewManager(c.Store, backup.DefaultDir(dir)), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	if _, err := mgr.CreateBackup(c.Context()); err != nil && !errors.Is(err, backup.ErrNoProfile) {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// PromptPassword asks for a password without echoing it. With confirm set
// the password has to be typed twice.
var PromptPassword = func(title string, confirm bool) (string, error) {
	var password, again string
	fields := []huh.Field{
		huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("password cannot be empty")
				}
				return nil
			}),
	}
	if confirm {
		fields = append(fields, huh.NewInput().
			Title("Repeat password").
			EchoMode(huh.EchoModePassword).
			Value(&again).
			Validate(func(s string) error {
				if s != password {
					return errors.New("passwords do not match")
				}
				return nil
			}))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", err
	}
	return password, nil
}

// Confirm asks a yes/no question. It defaults to no.
var Confirm = func(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	)).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// Confirmed returns nil when skip is set or the user agrees, ErrCancelled
// otherwise.
func Confirmed(skip bool, title, description string) error {
	if skip {
		return nil
	}
	ok, err := Confirm(title, description)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// ReadText reads all of r, for content piped on stdin.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
