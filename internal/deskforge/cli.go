package deskforge

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// printHelp prints the commands table
func printHelp() {
	colSuccess.Println("Usage: deskforge [flags]")
	colSuccess.Println("Provision a desktop environment on this host, then reboot.")
	fmt.Println()
	color.Info.Println("Flags:")
	fmt.Println("  -y        Non-interactive: accept defaults and skip all prompts")
	fmt.Println("  -debug    Verbose diagnostics")
	fmt.Println("  -h        Show this help")
	fmt.Println()
	color.Info.Println("Commands:")
	fmt.Println("  log       TUI viewer for the provisioning log")
	fmt.Println("  version   Version information")
}

// Main is the CLI entrypoint for cmd/deskforge.
func Main() {
	// 1. CONTEXT AND SIGNAL SETUP
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. SIGNAL CHANNEL SETUP
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	// 3. SIGNAL HANDLING GOROUTINE
	go func() {
		for {
			select {
			case sig := <-sigs:
				if isCriticalAtomic.Load() == 1 {
					// --- CRITICAL PHASE: Block 1st signal, force exit on 2nd ---
					colArrow.Print("\n-> ")
					colError.Printf("Package transaction in progress. Press Ctrl+C AGAIN to force exit NOW.\n")

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						colError.Printf("Forced immediate exit.")
						os.Exit(130)
					case <-time.After(5 * time.Second):
						continue
					case <-ctx.Done():
						return
					}
				} else {
					// --- NON-CRITICAL PHASE: Graceful Cancellation ---
					colArrow.Print("\n-> ")
					color.Danger.Printf("Received %v. Cancelling provisioning gracefully\n", sig)
					cancel()

					time.Sleep(100 * time.Millisecond)

					select {
					case <-sigs:
						colArrow.Print("\n-> ")
						color.Danger.Printf("Second interrupt received. Forcing immediate exit.")
						os.Exit(130)
					case <-time.After(2 * time.Second):
						colArrow.Print("\n-> ")
						color.Danger.Printf("Graceful shutdown timeout. Exiting.")
						os.Exit(1)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// 4. SUBCOMMANDS THAT SKIP PROVISIONING
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "log":
			os.Exit(runLogViewer(os.Args[2:]))
		case "version", "--version":
			fmt.Printf("deskforge %s (%s), built %s\n", version, arch, buildDate)
			return
		case "help":
			printHelp()
			return
		}
	}

	// 5. FLAGS
	fs := flag.NewFlagSet("deskforge", flag.ExitOnError)
	fs.Usage = printHelp
	assumeYes := fs.Bool("y", false, "Non-interactive mode: accept defaults, skip prompts.")
	fs.BoolVar(&Debug, "debug", false, "Verbose diagnostics.")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1) // Should not happen with flag.ExitOnError
	}

	os.Exit(run(ctx, *assumeYes))
}

// run performs one provisioning pass and returns the process exit code.
func run(ctx context.Context, assumeYes bool) int {
	// Prompting needs a terminal; without one the defaults path is the only
	// sane behavior.
	interactive := !assumeYes && term.IsTerminal(int(os.Stdin.Fd()))

	if err := requireRoot(); err != nil {
		colArrow.Print("-> ")
		colError.Println(err)
		return 1
	}

	if err := openRunLog(); err != nil {
		colArrow.Print("-> ")
		colError.Println(err)
		return 1
	}
	defer closeRunLog()

	env, err := detectEnvironment()
	if err != nil {
		logFatalf("%v", err)
		return 1
	}

	SysExec = &Executor{Context: ctx}
	TTYExec = &Executor{Context: ctx, Interactive: true}

	sets, err := loadPackageSets(PkgsetFile)
	if err != nil {
		logFatalf("Package set configuration: %v", err)
		return 1
	}

	mgr := newPackageManager(env, SysExec)

	backend := newNegotiator(mgr, TTYExec, interactive).Resolve(ctx)
	ui := newUI(backend, TTYExec)

	sel := chooseSelection(ctx, ui, interactive)

	if err := newPipeline(env, mgr, ui, sel, sets, SysExec).Run(ctx); err != nil {
		logFatalf("Provisioning failed: %v", err)
		return 1
	}
	return 0
}
