package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recall/pkg/conversation"
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Remember a conversation from a JSON file or stdin",
	Long: `Extract and store memories from a conversation batch.

The input is a JSON array of messages. Content can be a plain string or
an array of text and image parts:

  [
    {"role": "user", "content": "My cat is called Mochi"},
    {"role": "assistant", "content": "Noted!"}
  ]

Examples:
  # Remember a saved conversation
  recall add conversation.json

  # Pipe from another tool
  some-agent export | recall add -

  # Store under an explicit user
  recall add --user alice conversation.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
	}

	var messages []conversation.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return fmt.Errorf("parsing conversation: %w", err)
	}

	_, logger, engine, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
		_ = logger.Sync()
	}()

	added, err := engine.Add(cmd.Context(), messages, scopeOpts()...)
	if err != nil {
		return err
	}

	if len(added) == 0 {
		fmt.Println("Nothing new to remember.")
		return nil
	}
	fmt.Printf("Remembered %d memories:\n", len(added))
	for _, mem := range added {
		fmt.Printf("  - %s\n", mem.Content)
	}
	return nil
}
