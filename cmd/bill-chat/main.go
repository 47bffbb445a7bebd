package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joseph-ayodele/bills-assistant/internal/app"
	"github.com/joseph-ayodele/bills-assistant/internal/assistant"
	"github.com/joseph-ayodele/bills-assistant/internal/common"
	"github.com/joseph-ayodele/bills-assistant/internal/extract"
	"github.com/joseph-ayodele/bills-assistant/internal/report"
)

const help = `Commands:
  /summary [question]  explain the bill, or answer one question about it
  /items [out.xlsx]    list the billed components, optionally saving them
  /reset               forget the conversation
  /quit                exit
Anything else is sent as a question.`

func main() {
	useOCR := flag.Bool("ocr", false, "also run the tesseract OCR strategy when loading the bill")
	flag.Parse()

	cfg := common.LoadConfig()
	logger := app.NewLogger(os.Stderr, slog.LevelWarn)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "bill-chat [-ocr] <bill.pdf>")
		os.Exit(2)
	}
	if err := cfg.ValidateLLM(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := assistant.NewSession(
		app.Comparator(cfg.OCR, cfg.OCR.Enabled || *useOCR, logger),
		app.LLM(cfg.LLM, logger),
		logger,
	)
	if err := session.LoadBill(ctx, extract.FromPath(flag.Arg(0))); err != nil {
		logger.Error("load bill", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %s. %s\n", session.Document(), help)
	if err := repl(ctx, session, os.Stdin, os.Stdout); err != nil {
		logger.Error("chat stopped", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Tokens used: %d\n", session.TokensUsed())
}

func repl(ctx context.Context, s *assistant.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		var err error
		switch cmd {
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, help)
		case "/reset":
			s.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
		case "/summary":
			var answer string
			if answer, err = s.Summary(ctx, arg); err == nil {
				fmt.Fprintln(out, answer)
			}
		case "/items":
			err = items(ctx, s, arg, out)
		default:
			var answer string
			if answer, err = s.Ask(ctx, line); err == nil {
				fmt.Fprintln(out, answer)
			}
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func items(ctx context.Context, s *assistant.Session, path string, out io.Writer) error {
	list, err := s.Items(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No items found.")
		return nil
	}
	for _, it := range list {
		fmt.Fprintf(out, "- %s: %s", it.Label, it.Total)
		if it.Quantity != "" {
			fmt.Fprintf(out, " (%s x %s)", it.Quantity, it.UnitPrice)
		}
		fmt.Fprintln(out)
	}
	if path == "" {
		return nil
	}
	b, err := report.ItemsXLSX(list)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", path)
	return nil
}
