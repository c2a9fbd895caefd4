package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/client/models"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("wrong arguments, see help")

func (a *App) transfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(a.out)
	from := fs.String("from", "", "sender username")
	to := fs.String("to", "", "receiver username")
	amount := fs.String("amount", "", "amount to send")
	pin := fs.String("pin", "", "sender card PIN")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var err error
	if *from == "" {
		if *from, err = GetSimpleText(a.reader, "Sender username", a.out); err != nil {
			return err
		}
	}
	if *to == "" {
		if *to, err = GetSimpleText(a.reader, "Receiver username", a.out); err != nil {
			return err
		}
	}
	if *amount == "" {
		if *amount, err = GetSimpleText(a.reader, "Amount", a.out); err != nil {
			return err
		}
	}
	if *pin == "" {
		if *pin, err = GetPIN(a.out); err != nil {
			return err
		}
	}

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q", *amount)
	}

	id, err := a.api.Transfer(ctx, models.TransferRequest{
		SenderUsername:   *from,
		ReceiverUsername: *to,
		Amount:           &value,
		PIN:              *pin,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Transaction completed:", id)
	return nil
}

func (a *App) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	tx, err := a.api.GetTransaction(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", tx.ID)
	fmt.Fprintf(w, "From:\t%s\n", tx.SenderUsername)
	fmt.Fprintf(w, "To:\t%s\n", tx.ReceiverUsername)
	fmt.Fprintf(w, "Amount:\t%s\n", tx.Amount.StringFixed(2))
	fmt.Fprintf(w, "Status:\t%s\n", tx.Status)
	fmt.Fprintf(w, "Time:\t%s\n", tx.Timestamp.Format(time.RFC3339))
	if tx.Error != "" {
		fmt.Fprintf(w, "Error:\t%s\n", tx.Error)
	}
	return w.Flush()
}

func (a *App) list(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	txs, err := a.api.ListTransactions(ctx, args[0])
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions")
		return nil
	}

	return printTable(a.out, txs)
}

func printTable(out io.Writer, txs []*models.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tID\tFROM\tTO\tAMOUNT\tSTATUS\tERROR")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Timestamp.Format(time.RFC3339), tx.ID, tx.SenderUsername, tx.ReceiverUsername,
			tx.Amount.StringFixed(2), tx.Status, tx.Error)
	}
	return w.Flush()
}

// token mints a development bearer token for a phone number.
func (a *App) token(args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	tok, err := mintToken(args[0], []byte(a.config.SecretKey), a.config.TokenValidity)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, tok)
	return nil
}
