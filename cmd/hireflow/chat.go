package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hireflow/core"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive hiring-assistant session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flow, cleanup, err := buildFlow(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := core.NewID()

	fmt.Println("HireFlow hiring assistant. Type a request, or \"exit\" to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		resp, err := flow.Process(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		printResponse(resp)

		if ctx.Err() != nil {
			break
		}
	}

	return scanner.Err()
}

func printResponse(resp *core.Response) {
	fmt.Println(resp.Message)
	if len(resp.NextActions) > 0 {
		fmt.Println("\nNext steps:")
		for _, action := range resp.NextActions {
			fmt.Printf("  - %s\n", action)
		}
	}
	fmt.Println()
}
