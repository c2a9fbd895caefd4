// Package cli implements the cloudbank command-line client.
//
// Usage:
//
//	cli [-a url] [-t token] transfer [-from user] [-to user] [-amount n] [-pin n]
//	cli [-a url] [-t token] get <trans_id>
//	cli [-a url] [-t token] list <username>
//	cli [-k secret] token <phone>
//
// Missing transfer fields are prompted for. The PIN is read without echo.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/cloudbank/internal/client/client"
	"github.com/dmitrijs2005/cloudbank/internal/client/config"
	"github.com/dmitrijs2005/cloudbank/internal/client/models"
)

// API is the part of the HTTP client the commands use.
type API interface {
	Transfer(ctx context.Context, req models.TransferRequest) (string, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, username string) ([]*models.Transaction, error)
}

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    client.New(c.ServerURL, c.Token, c.Timeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

const usage = `Usage:
  transfer [-from user] [-to user] [-amount n] [-pin n]
  get <trans_id>
  list <username>
  token <phone>`

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]

	var err error
	switch cmd {
	case "transfer":
		err = a.transfer(ctx, rest)
	case "get":
		err = a.get(ctx, rest)
	case "list":
		err = a.list(ctx, rest)
	case "token":
		err = a.token(rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return 0
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		fmt.Fprintln(a.out, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return 1
	}
	return 0
}
