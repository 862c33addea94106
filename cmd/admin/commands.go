package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
	"golang.org/x/term"
)

// accountAdmin is the part of service.AccountService the commands use.
type accountAdmin interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.Account, *auth.TokenPair, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
}

// passwordPrompt asks for a secret.
type passwordPrompt interface {
	Password(label string) (string, error)
}

var errPasswordMismatch = errors.New("passwords do not match")

// terminalPrompt reads without echo when stdin is a terminal and falls back
// to reading lines, so passwords can be piped in scripts.
type terminalPrompt struct {
	fd         int
	in         *bufio.Reader
	out        io.Writer
	isTerminal func(fd int) bool
}

func newTerminalPrompt(stdin *os.File, out io.Writer) *terminalPrompt {
	return &terminalPrompt{
		fd:         int(stdin.Fd()),
		in:         bufio.NewReader(stdin),
		out:        out,
		isTerminal: term.IsTerminal,
	}
}

func (p *terminalPrompt) Password(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.isTerminal(p.fd) {
		raw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirmedPassword asks twice and requires both answers to match.
func confirmedPassword(p passwordPrompt) (string, error) {
	pw, err := p.Password("Password")
	if err != nil {
		return "", err
	}
	again, err := p.Password("Password (again)")
	if err != nil {
		return "", err
	}
	if pw != again {
		return "", errPasswordMismatch
	}
	return pw, nil
}

func createAccount(ctx context.Context, accounts accountAdmin, prompt passwordPrompt, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("createaccount", flag.ContinueOnError)
	username := fs.String("username", "", "username of the new account")
	emailAddr := fs.String("email", "", "email address of the new account")
	moderator := fs.Bool("moderator", false, "grant moderator rights")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *emailAddr == "" {
		return fmt.Errorf("-username and -email are required")
	}

	pw, err := confirmedPassword(prompt)
	if err != nil {
		return err
	}
	account, _, err := accounts.Register(ctx, service.RegisterInput{
		Username:  *username,
		Email:     *emailAddr,
		Password:  pw,
		Moderator: *moderator,
	})
	if err != nil {
		return err
	}

	role := "account"
	if account.IsModerator {
		role = "moderator account"
	}
	fmt.Fprintf(out, "created %s %s (%s)\n", role, account.Username, account.ID)
	return nil
}

func resetPassword(ctx context.Context, accounts accountAdmin, prompt passwordPrompt, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	username := fs.String("username", "", "account whose password is reset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("-username is required")
	}

	pw, err := confirmedPassword(prompt)
	if err != nil {
		return err
	}
	if err := accounts.ResetPassword(ctx, *username, pw); err != nil {
		return err
	}
	fmt.Fprintf(out, "password changed for %s\n", *username)
	return nil
}
