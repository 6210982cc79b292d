package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ragqa/internal/domain"
	"ragqa/internal/tui"
)

type asker interface {
	Ask(ctx context.Context, question string, k int) (domain.Answer, error)
}

// runPlain is a line-oriented question loop for terminals without the TUI.
func runPlain(ctx context.Context, rag asker, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Q: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			continue
		}
		if strings.EqualFold(q, "exit") || strings.EqualFold(q, "quit") {
			return nil
		}
		ans, err := rag.Ask(ctx, q, 0)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "A: %s\n", ans.Text)
		if len(ans.Sources) > 0 {
			fmt.Fprintln(out, "Sources:")
			for i, s := range ans.Sources {
				fmt.Fprintf(out, "  %d. %s\n", i+1, tui.Provenance(s))
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
