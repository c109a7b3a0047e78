// Package cli implements the interactive operator console for Vigil.
// It renders the chat log, the tool timeline, and consent prompts from
// engine state, and is the only place approve/reject decisions are made.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tidemark/vigil/internal/agent"
	"github.com/tidemark/vigil/internal/domain"
	"github.com/tidemark/vigil/internal/vitals"
)

// Gateway is the interactive command-line console.
type Gateway struct {
	orch   *agent.Orchestrator
	source vitals.Source
	logger *slog.Logger
	done   chan struct{} // closed by Stop to signal shutdown

	printed int // chat entries already rendered
}

// NewGateway creates a CLI console over the given orchestrator and roster.
func NewGateway(orch *agent.Orchestrator, source vitals.Source, logger *slog.Logger) *Gateway {
	return &Gateway{
		orch:   orch,
		source: source,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start runs the interactive REPL. Blocks until ctx is cancelled,
// Stop is called, or the operator types "exit".
func (g *Gateway) Start(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Vigil — wearable risk console")
	fmt.Printf("Watching subject %q. Type a request, /help for commands, \"exit\" to quit.\n", g.orch.Subject())
	fmt.Println()

	for {
		fmt.Printf("vigil(%s)> ", g.orch.Subject())

		select {
		case <-ctx.Done():
			fmt.Println("\nShutting down.")
			return nil
		case <-g.done:
			fmt.Println("\nShutting down.")
			return nil
		default:
		}

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Println("Goodbye.")
			return nil
		}
		if strings.HasPrefix(line, "/") {
			g.handleCommand(ctx, line)
			continue
		}

		g.orch.HandleUserMessage(ctx, line)
		g.printNewMessages()
		g.drainConsentQueue(ctx, scanner)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

// Stop signals the REPL to shut down.
func (g *Gateway) Stop(_ context.Context) error {
	select {
	case <-g.done:
		// Already closed.
	default:
		close(g.done)
	}
	return nil
}

func (g *Gateway) handleCommand(ctx context.Context, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Println("  /subjects      list the monitored roster")
		fmt.Println("  /use <id>      switch the conversation to another subject")
		fmt.Println("  /timeline      show the tool-call timeline")
		fmt.Println("  exit           quit")
	case "/subjects":
		g.printSubjects(ctx)
	case "/use":
		if len(fields) < 2 {
			fmt.Println("Usage: /use <subject-id>")
			return
		}
		g.switchSubject(ctx, fields[1])
	case "/timeline":
		g.printTimeline()
	default:
		fmt.Printf("Unknown command %s — try /help.\n", fields[0])
	}
}

func (g *Gateway) printSubjects(ctx context.Context) {
	subjects, err := g.source.Subjects(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	for _, s := range subjects {
		marker := " "
		if s.ID == g.orch.Subject() {
			marker = "*"
		}
		status := "synced " + s.LastSyncAt.Format("15:04")
		if s.NoData {
			status = "no recent data"
		}
		fmt.Printf(" %s %-8s %-12s %-10s %s\n", marker, s.ID, s.Name, s.Dept, status)
	}
}

func (g *Gateway) switchSubject(ctx context.Context, id string) {
	subjects, err := g.source.Subjects(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	for _, s := range subjects {
		if s.ID == id {
			g.orch.SetSubject(id)
			fmt.Printf("Now watching %s (%s).\n", s.Name, s.ID)
			return
		}
	}
	fmt.Printf("Unknown subject %q — see /subjects.\n", id)
}

func (g *Gateway) printTimeline() {
	calls := g.orch.Session().ToolCalls()
	if len(calls) == 0 {
		fmt.Println("No tool calls yet.")
		return
	}
	for _, c := range calls {
		line := fmt.Sprintf("  %s  %-20s %s", c.StartedAt.Format("15:04:05"), c.ToolName, c.Status)
		if c.Status.Terminal() && !c.FinishedAt.IsZero() {
			line += fmt.Sprintf(" (%s)", c.FinishedAt.Sub(c.StartedAt).Round(time.Millisecond))
		}
		if c.Error != "" {
			line += " — " + c.Error
		}
		fmt.Println(line)
	}
}

// printNewMessages renders chat entries appended since the last render.
func (g *Gateway) printNewMessages() {
	chat := g.orch.Session().Chat()
	for ; g.printed < len(chat); g.printed++ {
		msg := chat[g.printed]
		if msg.Role != domain.RoleAssistant {
			continue
		}
		fmt.Println()
		fmt.Println(msg.Content)
	}
	fmt.Println()
}

// drainConsentQueue prompts for each pending consent request, strictly
// one at a time from the head of the queue.
func (g *Gateway) drainConsentQueue(ctx context.Context, scanner *bufio.Scanner) {
	for {
		queue := g.orch.Session().ConsentQueue()
		if len(queue) == 0 {
			return
		}
		req := queue[0]

		call, ok := g.orch.Session().ToolCall(req.ToolCallID)
		if !ok {
			return
		}

		fmt.Printf("%s\n", req.Title)
		fmt.Printf("  %s\n", req.Description)
		fmt.Printf("  Tool:   %s (%s)\n", call.ToolName, call.Server)
		fmt.Printf("  Call:   %s\n", call.ID)
		fmt.Print("Approve? [y/N]: ")

		if !scanner.Scan() {
			return
		}

		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if answer == "y" || answer == "yes" {
			g.orch.Session().Approve(ctx, req.ToolCallID)
		} else {
			g.orch.Session().Reject(req.ToolCallID)
			fmt.Println("Rejected.")
		}
		g.printNewMessages()
	}
}
