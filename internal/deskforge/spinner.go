package deskforge

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// runWithSpinner runs op in its own goroutine and renders a spinner until it
// returns, then joins it. Presentation only: op's error is returned untouched
// and its output streams are not redirected. Off a terminal the spinner is
// skipped and op runs inline.
func runWithSpinner(desc string, op func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return op()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan error, 1)
	go func() {
		done <- op()
	}()

	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			bar.Finish()
			return err
		case <-ticker.C:
			bar.Add(1)
		}
	}
}
