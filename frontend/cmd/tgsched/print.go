package main

import (
	"fmt"
	"io"

	"github.com/purplesanya/tg-bot/frontend/internal/accounts"
)

func printAccounts(w io.Writer, data accounts.Data) {
	if data.Empty() {
		fmt.Fprintln(w, "no stored accounts")
		return
	}
	for _, u := range data.Accounts {
		mark := " "
		if data.IsActive(u.Id) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d\t%s\n", mark, u.Id, u.DisplayName())
	}
}
