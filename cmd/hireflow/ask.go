package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/hireflow/core"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [request]",
	Short: "Process a single request and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		flow, cleanup, err := buildFlow(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		sessionID := askSession
		if sessionID == "" {
			sessionID = core.NewID()
		}

		resp, err := flow.Process(cmd.Context(), sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		printResponse(resp)
		if resp.Code != core.CodeOK && resp.Code != core.CodeClarification {
			return fmt.Errorf("request %s", resp.Code)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session id for multi-turn context (default: fresh session)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the structured response as JSON")
}
