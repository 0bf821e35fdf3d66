package assistant

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

// replPrompt is shown before each input line.
const replPrompt = "shipmate » "

// turnTimeout bounds a single chat turn. Generous because one turn may
// chain several MCP tool calls.
const turnTimeout = 5 * time.Minute

// REPL is the interactive chat loop: free text goes to the assistant,
// slash commands inspect the session and the tool fleet. History is kept
// across runs in a temp file.
type REPL struct {
	assistant *Assistant
	tools     ToolSource
	model     string
	sessionID string
	rl        *readline.Instance
}

// NewREPL creates a chat REPL over an assistant. The tool source is only
// read for the /tools listing; tool execution happens inside the
// assistant.
func NewREPL(a *Assistant, tools ToolSource, model string) *REPL {
	return &REPL{
		assistant: a,
		tools:     tools,
		model:     model,
	}
}

// Run reads lines until the user exits with Ctrl+D, "exit" or "quit".
// Ctrl+C clears the current line rather than quitting, matching shell
// behavior.
func (r *REPL) Run(ctx context.Context) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("/help"),
		readline.PcItem("/tools"),
		readline.PcItem("/new"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       filepath.Join(os.TempDir(), ".shipmate_chat_history"),
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printBanner()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C discards the current line but keeps the session.
			continue
		} else if err == io.EOF {
			fmt.Fprintln(rl.Stdout(), "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			fmt.Fprintln(rl.Stdout(), "Goodbye!")
			return nil
		}

		if strings.HasPrefix(input, "/") {
			r.handleCommand(input)
			continue
		}

		r.turn(ctx, input)
	}
}

// printBanner announces the model and the tool fleet once at startup.
func (r *REPL) printBanner() {
	out := r.rl.Stdout()
	fmt.Fprintf(out, "Chatting with %s. Type /help for commands, exit or Ctrl+D to leave.\n", r.model)
	if count := len(r.tools.Tools()); count > 0 {
		fmt.Fprintf(out, "%d MCP tool(s) available.\n", count)
	} else {
		fmt.Fprintln(out, "No MCP tools connected; answers come from the model alone.")
	}
	fmt.Fprintln(out)
}

// handleCommand dispatches slash commands.
func (r *REPL) handleCommand(input string) {
	out := r.rl.Stdout()
	switch input {
	case "/help":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  /tools      list the available MCP tools")
		fmt.Fprintln(out, "  /new        start a fresh session, dropping the history")
		fmt.Fprintln(out, "  /help       show this help")
		fmt.Fprintln(out, "  exit, quit  leave the chat")
	case "/tools":
		tools := r.tools.Tools()
		if len(tools) == 0 {
			fmt.Fprintln(out, "No tools connected.")
			return
		}
		for _, tool := range tools {
			fmt.Fprintf(out, "  %s\n", tool.Name)
		}
		fmt.Fprintf(out, "%d tool(s)\n", len(tools))
	case "/new":
		if r.sessionID != "" {
			r.assistant.Sessions().Reset(r.sessionID)
		}
		r.sessionID = ""
		fmt.Fprintln(out, "Started a new session.")
	default:
		fmt.Fprintf(out, "Unknown command %s (try /help)\n", input)
	}
}

// turn runs one assistant exchange and prints tool activity and the
// reply. Errors are printed rather than returned so one failed turn does
// not end the session.
func (r *REPL) turn(ctx context.Context, message string) {
	out := r.rl.Stdout()

	turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	reply, err := r.assistant.Chat(turnCtx, r.sessionID, message)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n\n", err)
		return
	}
	r.sessionID = reply.SessionID

	for _, call := range reply.ToolCalls {
		if call.Error != "" {
			fmt.Fprintf(out, "  [tool %s failed: %s]\n", call.Tool, call.Error)
		} else {
			fmt.Fprintf(out, "  [ran %s]\n", call.Tool)
		}
	}
	fmt.Fprintf(out, "%s\n\n", reply.Content)
}
