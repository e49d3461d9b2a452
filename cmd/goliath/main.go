// Command goliath is the interactive front end for the task-execution
// engine. It supports single-shot mode (goliath "summarise X") and an
// interactive REPL with memory commands.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/zdevelops1/goliath/internal/config"
	"github.com/zdevelops1/goliath/internal/engine"
	"github.com/zdevelops1/goliath/internal/moderation"
	"github.com/zdevelops1/goliath/internal/provider"
)

const banner = `
   ██████   ██████  ██      ██  █████  ████████ ██   ██
  ██       ██    ██ ██      ██ ██   ██    ██    ██   ██
  ██   ███ ██    ██ ██      ██ ███████    ██    ███████
  ██    ██ ██    ██ ██      ██ ██   ██    ██    ██   ██
   ██████   ██████  ███████ ██ ██   ██    ██    ██   ██

  Universal AI Automation Engine
  Type a task. Type 'quit' to exit.
  Type '/memory' for memory commands.
`

const (
	maxFactKeyLen   = 128
	maxFactValueLen = 4096
)

var providerName = flag.String("provider", "", "Model provider to use (overrides DEFAULT_PROVIDER)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	eng, err := engine.New(cfg, *providerName)
	if err != nil {
		// Unknown-provider errors already enumerate the valid names.
		log.Fatalf("Failed to start engine: %v", err)
	}

	if flag.NArg() > 0 {
		// Single-shot mode: treat all arguments as one task.
		task := strings.Join(flag.Args(), " ")
		runTask(eng, task)
		return
	}

	runREPL(eng)
}

func runREPL(eng *engine.Engine) {
	fmt.Print(banner)
	fmt.Printf("  Provider: %s (%s)\n", eng.Provider().Name(), eng.Provider().Model())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\ngoliath> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		task := strings.TrimSpace(scanner.Text())
		if task == "" {
			continue
		}
		if task == "quit" || task == "exit" {
			return
		}
		if strings.HasPrefix(task, "/") {
			if handleMemoryCommand(eng, task) {
				continue
			}
			fmt.Printf("\n  Unknown command %q. Try /memory.\n", task)
			continue
		}

		runTask(eng, task)
	}
}

// runTask executes one task and reports the outcome. Each error kind reads
// differently: moderation errors explain the rejection, provider errors read
// as a transient failure.
func runTask(eng *engine.Engine, task string) {
	result, err := eng.Execute(context.Background(), task)
	if err != nil {
		var modErr *moderation.Error
		if errors.As(err, &modErr) {
			fmt.Printf("\n  [BLOCKED] %s\n", modErr.Message)
			return
		}
		var provErr *provider.Error
		if errors.As(err, &provErr) {
			fmt.Printf("\n  [ERROR] Task failed, try again: %v\n", provErr)
			return
		}
		fmt.Printf("\n  [ERROR] %v\n", err)
		return
	}

	fmt.Printf("\n%s\n", result.Content)
	fmt.Printf("\n  [%s/%s, %d tokens]\n", result.Provider, result.Model, result.Usage.TotalTokens)
}

// handleMemoryCommand handles /-prefixed memory commands. It returns false
// when the input is not a recognised command.
func handleMemoryCommand(eng *engine.Engine, input string) bool {
	mem := eng.Memory()
	parts := strings.SplitN(input, " ", 3)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/memory":
		fmt.Printf("\n  Memory: %s\n", mem.Summary())
		fmt.Printf("  File:   %s\n", mem.Path())
		return true

	case "/history":
		history := mem.History()
		if len(history) == 0 {
			fmt.Println("\n  No conversation history.")
			return true
		}
		fmt.Println()
		for _, turn := range history {
			text := turn.Content
			if len(text) > 120 {
				text = text[:120] + "..."
			}
			fmt.Printf("  [%s] %s\n", strings.ToUpper(turn.Role), text)
		}
		return true

	case "/remember":
		if len(parts) < 3 {
			fmt.Println("\n  Usage: /remember <key> <value>")
			return true
		}
		key, value := parts[1], parts[2]
		if len(key) > maxFactKeyLen {
			fmt.Println("\n  [ERROR] Key too long (max 128 characters).")
			return true
		}
		if len(value) > maxFactValueLen {
			fmt.Println("\n  [ERROR] Value too long (max 4,096 characters).")
			return true
		}
		if err := mem.Remember(key, value); err != nil {
			fmt.Printf("\n  [ERROR] %v\n", err)
			return true
		}
		fmt.Printf("\n  Remembered: %s = %s\n", key, value)
		return true

	case "/recall":
		if len(parts) < 2 {
			fmt.Println("\n  Usage: /recall <key>")
			return true
		}
		key := parts[1]
		value, ok := mem.Recall(key)
		if !ok {
			fmt.Printf("\n  No fact stored for %q.\n", key)
			return true
		}
		fmt.Printf("\n  %s = %s\n", key, value)
		return true

	case "/forget":
		if len(parts) < 2 {
			fmt.Println("\n  Usage: /forget <key>")
			return true
		}
		if err := mem.Forget(parts[1]); err != nil {
			fmt.Printf("\n  [ERROR] %v\n", err)
			return true
		}
		fmt.Printf("\n  Forgot: %s\n", parts[1])
		return true

	case "/facts":
		facts := mem.Facts()
		if len(facts) == 0 {
			fmt.Println("\n  No stored facts.")
			return true
		}
		fmt.Println()
		for k, v := range facts {
			fmt.Printf("  %s: %s\n", k, v)
		}
		return true

	case "/clear":
		if len(parts) < 2 {
			fmt.Println("\n  Usage: /clear history | /clear all")
			return true
		}
		switch parts[1] {
		case "history":
			if err := mem.ClearHistory(); err != nil {
				fmt.Printf("\n  [ERROR] %v\n", err)
				return true
			}
			fmt.Println("\n  Conversation history cleared.")
		case "all":
			if err := mem.ClearAll(); err != nil {
				fmt.Printf("\n  [ERROR] %v\n", err)
				return true
			}
			fmt.Println("\n  All memory cleared.")
		default:
			fmt.Println("\n  Usage: /clear history | /clear all")
		}
		return true
	}

	return false
}
