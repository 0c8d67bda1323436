package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/recall/internal/llm"
	"github.com/fyrsmithlabs/recall/pkg/conversation"
	"github.com/fyrsmithlabs/recall/pkg/memory"
)

// chatContextSize is how many memories are recalled into each reply.
const chatContextSize = 5

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an assistant that remembers past conversations",
	Long: `Start an interactive chat. Before each reply the assistant recalls
the most relevant stored memories, and after each exchange the new facts
are extracted and stored.

Type "exit" or press Ctrl-D to quit.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, engine, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = engine.Close()
		_ = logger.Sync()
	}()

	client, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}

	fmt.Println("Chatting with recall. Type \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := respond(cmd, engine, client, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)

		// Remember the exchange in the background of the loop; a failed
		// store should not end the session.
		exchange := []conversation.Message{
			conversation.NewUserText(input),
			conversation.NewAssistantText(reply),
		}
		if _, err := engine.Add(cmd.Context(), exchange, scopeOpts()...); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not store memories: %v\n", err)
		}
	}
	return scanner.Err()
}

// respond builds a reply grounded in recalled memories.
func respond(cmd *cobra.Command, engine *memory.Engine, client llm.Client, input string) (string, error) {
	results, err := engine.Search(cmd.Context(), input, chatContextSize, scopeOpts()...)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if len(results) > 0 {
		sb.WriteString("You know the following about the user from past conversations:\n")
		for _, r := range results {
			fmt.Fprintf(&sb, "- %s\n", r.Content)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Reply to the user's message conversationally. ")
	sb.WriteString("Use the known facts when they are relevant.\n\nUser: ")
	sb.WriteString(input)

	return client.Complete(cmd.Context(), sb.String())
}
