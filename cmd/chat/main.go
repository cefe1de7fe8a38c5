package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/config"
)

func main() {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		log.Fatal(err)
	}
	cfgPath := flag.String("config", defaultPath, "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	transport, err := cfg.Backend.Transport(logger)
	if err != nil {
		log.Fatal(fmt.Errorf("error creating %s backend: %w", cfg.Backend.Name(), err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view := chatview.New(transport, cfg.ViewOptions(logger)...)
	p := newPrinter(os.Stdout)
	view.Subscribe(p.observe)

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Println(boldGreen("Foster Care Aficionado"))
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()
	p.observe(view.Snapshot())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()

		if strings.ToLower(strings.TrimSpace(input)) == "exit" {
			break
		}

		done, err := view.Submit(ctx, input)
		if err != nil {
			continue
		}

		select {
		case <-done:
		case <-ctx.Done():
			<-done
			return
		}
		fmt.Println()
	}
}
