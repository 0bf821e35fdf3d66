package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shipmate/internal/assistant"
	"shipmate/internal/cli"
	"shipmate/internal/llamastack"

	"github.com/spf13/cobra"
)

var (
	chatModel   string
	chatYolo    bool
	chatSession string
	chatNoTools bool
)

// chatCmd talks to the assistant from the terminal.
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the deployment assistant",
	Long: `Chat with the assistant backed by LLaMA Stack and the configured
MCP servers. With a message argument a single turn is executed and the
reply printed; without one an interactive session starts.

The assistant can execute MCP tools during a turn. Destructive tools
stay blocked unless --yolo is given.

Examples:
  shipmate chat "which pods are running in the default namespace?"
  shipmate chat
  shipmate chat --model llama-3-3-70b "summarize the argocd applications"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	model := cfg.LlamaStack.Model
	if chatModel != "" {
		model = chatModel
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	llm := llamastack.NewClient(cfg.LlamaStack.URL,
		llamastack.WithTimeout(time.Duration(cfg.LlamaStack.TimeoutSeconds)*time.Second))

	// The chat command connects the MCP fleet itself instead of relying
	// on a running control plane, so it works on a fresh checkout.
	var tools assistant.ToolSource = assistant.NoTools{}
	if !chatNoTools {
		registry, err := connectToolServers(ctx, chatYolo || cfg.Yolo)
		if err != nil {
			// A chat without tools is still useful; degrade with a notice.
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(fmt.Sprintf("continuing without MCP tools: %v", err)))
		} else {
			defer registry.Close()
			tools = registry
		}
	}

	promptTemplate, err := assistant.LoadPromptTemplate(cfg.Assistant.PromptTemplate)
	if err != nil {
		return &cli.ConfigError{Err: err}
	}

	asst, err := assistant.New(assistant.Config{
		Model:              model,
		MaxToolRounds:      cfg.Assistant.MaxToolRounds,
		MaxHistory:         cfg.Assistant.MaxHistory,
		PromptTemplate:     promptTemplate,
		EnableBuiltinTools: cfg.LlamaStack.EnableBuiltinTools,
	}, llm, tools, assistant.WithToolgroupLister(llm))
	if err != nil {
		return &cli.ConfigError{Err: err}
	}

	// One-shot mode: single turn, print reply, exit.
	if len(args) == 1 {
		return runChatOnce(ctx, cmd, asst, args[0])
	}

	repl := assistant.NewREPL(asst, tools, model)
	return repl.Run(ctx)
}

// runChatOnce executes one assistant turn and prints tool activity plus
// the reply.
func runChatOnce(ctx context.Context, cmd *cobra.Command, asst *assistant.Assistant, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message must not be empty")
	}

	progress := cli.StartProgress(rootQuiet, "Thinking...")
	reply, err := asst.Chat(ctx, chatSession, message)
	progress.Stop()
	if err != nil {
		return &cli.UnreachableError{Target: "llama-stack", Err: err}
	}

	out := cmd.OutOrStdout()
	if !rootQuiet {
		for _, call := range reply.ToolCalls {
			if call.Error != "" {
				fmt.Fprintf(out, "  [tool %s failed: %s]\n", call.Tool, call.Error)
			} else {
				fmt.Fprintf(out, "  [ran %s]\n", call.Tool)
			}
		}
	}
	fmt.Fprintln(out, reply.Content)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatModel, "model", "",
		"Model to chat with (default from configuration)")
	chatCmd.Flags().BoolVar(&chatYolo, "yolo", false,
		"Allow destructive tool calls")
	chatCmd.Flags().StringVar(&chatSession, "session", "",
		"Continue an existing session by ID (one-shot mode)")
	chatCmd.Flags().BoolVar(&chatNoTools, "no-tools", false,
		"Chat without connecting any MCP servers")
}
