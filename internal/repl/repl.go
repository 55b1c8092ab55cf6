// Package repl provides the interactive query loop and external client
// launch used by the connect command.
package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/session"
)

// Run reads queries line by line and executes them against the session's
// active connection until EOF, "exit", or "quit".
func Run(ctx context.Context, sess *session.Session, prompt string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt + "=> ",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		res, err := sess.ExecuteQuery(ctx, query)
		if err != nil {
			fmt.Printf("ERROR: %v\n", err)
			continue
		}
		fmt.Print(FormatResult(res))
	}
	return nil
}

// FormatResult renders a query result as a pipe-separated table.
func FormatResult(res *session.QueryResult) string {
	var b strings.Builder
	b.WriteString(strings.Join(res.Columns, " | "))
	b.WriteString("\n")
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			fmt.Fprintf(&b, "%v", row[col])
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "(%d rows)\n", res.RowCount)
	return b.String()
}
