package deskforge

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/rivo/tview"
)

// runLogViewer implements the `deskforge log` subcommand: a scrollable view
// of the provisioning log that keeps tailing it while a run is in progress.
func runLogViewer(args []string) int {
	logCmd := flag.NewFlagSet("log", flag.ExitOnError)
	prev := logCmd.Bool("prev", false, "Show the previous (rotated) run log instead.")
	if err := logCmd.Parse(args); err != nil {
		return 1
	}

	path := logPath()
	if *prev {
		// The rotated log is static; dump and exit.
		content, err := readRotatedLog(path + ".1.gz")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading previous log: %v\n", err)
			return 1
		}
		fmt.Print(content)
		return 0
	}

	app := tview.NewApplication()

	header := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignLeft)
	header.SetBorder(true)
	header.SetTitle("deskforge Provisioning Log")

	logView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetScrollable(true).
		SetChangedFunc(func() {
			app.Draw()
		})
	logView.SetBorder(true)

	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetTextAlign(tview.AlignLeft)
	footer.SetBorder(true)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 3, 0, false).
		AddItem(logView, 0, 1, true).
		AddItem(footer, 3, 0, false)

	follow := true
	prevContent := ""

	updateHeader := func() {
		mode := "paused"
		if follow {
			mode = "following"
		}
		header.SetText(fmt.Sprintf("[gray]%s | %s[white]", path, mode))
	}
	updateHeader()
	footer.SetText("[gray]q/Esc quit | ↑ ↓ PgUp PgDn scroll | Home/End jump | f toggle follow[white]")

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlQ, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyUp, tcell.KeyPgUp:
			// Manual scrolling pauses the tail.
			follow = false
			updateHeader()
			return event
		case tcell.KeyHome:
			follow = false
			updateHeader()
			logView.ScrollToBeginning()
			return nil
		case tcell.KeyEnd:
			follow = true
			updateHeader()
			logView.ScrollToEnd()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
				return nil
			case 'f':
				follow = !follow
				updateHeader()
				if follow {
					logView.ScrollToEnd()
				}
				return nil
			}
		}
		return event
	})

	// Poll the log file; QueueUpdateDraw keeps UI mutation on the app thread.
	go func() {
		ticker := time.NewTicker(400 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			data, err := os.ReadFile(path)
			content := string(data)
			if err != nil {
				content = fmt.Sprintf("No provisioning log at %s yet.\nRun 'deskforge' to start a run.", path)
			}
			if content == prevContent {
				continue
			}
			prevContent = content
			app.QueueUpdateDraw(func() {
				logView.Clear()
				ansiWriter := tview.ANSIWriter(logView)
				ansiWriter.Write([]byte(content))
				if follow {
					logView.ScrollToEnd()
				}
			})
		}
	}()

	app.SetRoot(flex, true).SetFocus(logView)

	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tui:", err)
		return 1
	}
	return 0
}

// readRotatedLog decompresses the gzip-rotated previous run log.
func readRotatedLog(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gz.Close()

	b, err := io.ReadAll(gz)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
