package account

import (
	"github.com/julianstephens/tarot/internal/cli"
)

type SignUpCmd struct {
	Username string `arg:"" help:"Name to register."`
	Password string `help:"Password. Prompted for when omitted." env:"${env_password}"`
}

func (c *SignUpCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = cli.PromptPassword("Choose a password", true); err != nil {
			return err
		}
	}

	account, err := ctx.App.Users.SignUp(ctx.Context(), c.Username, password)
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Welcome, %s! You are signed in.", account.Username))
	return nil
}

type SignInCmd struct {
	Username string `arg:"" help:"Registered name."`
	Password string `help:"Password. Prompted for when omitted." env:"${env_password}"`
}

func (c *SignInCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = cli.PromptPassword("Password", false); err != nil {
			return err
		}
	}

	account, err := ctx.App.Users.SignIn(ctx.Context(), c.Username, password)
	if err != nil {
		return err
	}
	ctx.Println(cli.Success("Signed in as %s", account.Username))
	return nil
}

type SignOutCmd struct{}

func (c *SignOutCmd) Run(ctx *cli.Context) error {
	if err := ctx.App.Users.SignOut(ctx.Context()); err != nil {
		return err
	}
	ctx.Println(cli.Success("Signed out"))
	return nil
}

type WhoAmICmd struct{}

func (c *WhoAmICmd) Run(ctx *cli.Context) error {
	account, err := ctx.App.Users.CurrentSession(ctx.Context())
	if err != nil {
		return err
	}
	if account == nil {
		ctx.Println(cli.MutedStyle.Render("Not signed in."))
		return nil
	}
	ctx.Printf("%s %s\n", cli.HeadingStyle.Render(account.Username), cli.MutedStyle.Render(account.ID))
	return nil
}
