package deskforge

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// UIBackend identifies the interactive helper used for prompts, ranked by
// richness: gum > fzf > whiptail > none.
type UIBackend int

const (
	BackendNone UIBackend = iota
	BackendWhiptail
	BackendFzf
	BackendGum
)

func (b UIBackend) String() string {
	switch b {
	case BackendGum:
		return "gum"
	case BackendFzf:
		return "fzf"
	case BackendWhiptail:
		return "whiptail"
	}
	return "none"
}

// binaryName returns the executable that provides the backend, or "" for none.
func (b UIBackend) binaryName() string {
	if b == BackendNone {
		return ""
	}
	return b.String()
}

// probeOrder is the fixed preference order for backend resolution.
var probeOrder = []UIBackend{BackendGum, BackendFzf, BackendWhiptail}

// probeBackend returns the richest backend currently installed.
func probeBackend(lookPath func(string) (string, error)) UIBackend {
	for _, b := range probeOrder {
		if _, err := lookPath(b.binaryName()); err == nil {
			return b
		}
	}
	return BackendNone
}

// UI is the capability surface every prompt, banner and confirmation goes
// through once negotiation has frozen a backend.
type UI interface {
	Backend() UIBackend
	// Confirm asks a yes/no question, returning def when the backend cannot ask.
	Confirm(ctx context.Context, prompt string, def bool) bool
	// Choose picks one option from a list. It must never block on the none
	// backend; cancellation or failure returns an error and the caller falls
	// back to its default.
	Choose(ctx context.Context, title string, options []string) (string, error)
	// Banner renders a prominent message.
	Banner(ctx context.Context, text string)
}

// newUI returns the implementation for a resolved backend.
func newUI(backend UIBackend, runner commandRunner) UI {
	switch backend {
	case BackendGum:
		return &gumUI{runner: runner}
	case BackendFzf:
		return &fzfUI{runner: runner}
	case BackendWhiptail:
		return &whiptailUI{runner: runner}
	default:
		return noneUI{}
	}
}

// interactiveMu ensures only one interactive prompt reads stdin at a time.
var interactiveMu sync.Mutex

// askForConfirmation is the plain-text fallback prompt, defaulting to yes on
// empty input.
func askForConfirmation(p colorPrinter, format string, a ...any) bool {
	interactiveMu.Lock()
	defer interactiveMu.Unlock()

	reader := bufio.NewReader(os.Stdin)
	mainPrompt := fmt.Sprintf(format, a...)
	fullPrompt := fmt.Sprintf("%s [Y/n]: ", mainPrompt)

	for {
		cPrintf(p, "%s", fullPrompt)
		response, err := reader.ReadString('\n')
		if err != nil {
			return false // On error (like Ctrl+D), default to "no"
		}
		response = strings.ToLower(strings.TrimSpace(response))

		if response == "y" || response == "yes" || response == "" {
			return true
		}
		if response == "n" || response == "no" {
			return false
		}
		cPrintln(colWarn, "Invalid input.")
	}
}

// textBanner is the shared banner used by backends without styling of their own.
func textBanner(text string) {
	line := strings.Repeat("=", len(text)+4)
	colSuccess.Println(line)
	colSuccess.Printf("  %s\n", text)
	colSuccess.Println(line)
}

// --- gum ---

type gumUI struct {
	runner commandRunner
}

func (u *gumUI) Backend() UIBackend { return BackendGum }

func (u *gumUI) Confirm(ctx context.Context, prompt string, def bool) bool {
	args := []string{"confirm", prompt}
	if def {
		args = append(args, "--default=true")
	} else {
		args = append(args, "--default=false")
	}
	// gum confirm signals the answer via exit code.
	return u.runner.Run(exec.CommandContext(ctx, "gum", args...)) == nil
}

func (u *gumUI) Choose(ctx context.Context, title string, options []string) (string, error) {
	args := append([]string{"choose", "--header", title}, options...)
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "gum", args...)
	cmd.Stdout = &out
	if err := u.runner.Run(cmd); err != nil {
		return "", fmt.Errorf("gum choose: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

func (u *gumUI) Banner(ctx context.Context, text string) {
	cmd := exec.CommandContext(ctx, "gum", "style",
		"--border", "double", "--padding", "1 3", "--margin", "1", "--bold", text)
	if err := u.runner.Run(cmd); err != nil {
		textBanner(text)
	}
}

// --- fzf ---

type fzfUI struct {
	runner commandRunner
}

func (u *fzfUI) Backend() UIBackend { return BackendFzf }

func (u *fzfUI) Confirm(ctx context.Context, prompt string, def bool) bool {
	// fzf has no confirm dialog; fall back to the plain prompt.
	return askForConfirmation(colNote, "%s", prompt)
}

func (u *fzfUI) Choose(ctx context.Context, title string, options []string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "fzf",
		"--height", "40%", "--reverse", "--prompt", title+" > ")
	cmd.Stdin = strings.NewReader(strings.Join(options, "\n") + "\n")
	cmd.Stdout = &out
	if err := u.runner.Run(cmd); err != nil {
		return "", fmt.Errorf("fzf: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

func (u *fzfUI) Banner(ctx context.Context, text string) {
	textBanner(text)
}

// --- whiptail ---

type whiptailUI struct {
	runner commandRunner
}

func (u *whiptailUI) Backend() UIBackend { return BackendWhiptail }

func (u *whiptailUI) Confirm(ctx context.Context, prompt string, def bool) bool {
	args := []string{"--title", "deskforge"}
	if !def {
		args = append(args, "--defaultno")
	}
	args = append(args, "--yesno", prompt, "10", "60")
	return u.runner.Run(exec.CommandContext(ctx, "whiptail", args...)) == nil
}

func (u *whiptailUI) Choose(ctx context.Context, title string, options []string) (string, error) {
	// whiptail draws on stdout and writes the chosen tag to stderr.
	args := []string{"--title", "deskforge", "--menu", title,
		strconv.Itoa(12 + len(options)), "60", strconv.Itoa(len(options))}
	for _, opt := range options {
		args = append(args, opt, "")
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "whiptail", args...)
	cmd.Stderr = &out
	if err := u.runner.Run(cmd); err != nil {
		return "", fmt.Errorf("whiptail: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

func (u *whiptailUI) Banner(ctx context.Context, text string) {
	textBanner(text)
}

// --- none ---

// noneUI never blocks: confirmations take their default and choices take the
// first offered option.
type noneUI struct{}

func (noneUI) Backend() UIBackend { return BackendNone }

func (noneUI) Confirm(ctx context.Context, prompt string, def bool) bool {
	return def
}

func (noneUI) Choose(ctx context.Context, title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options offered")
	}
	return options[0], nil
}

func (noneUI) Banner(ctx context.Context, text string) {
	textBanner(text)
}
