package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dirmap/internal/logger"
	"github.com/idelchi/dirmap/internal/scan"
)

// errCancelled is returned when a scan is interrupted before anything was published.
var errCancelled = errors.New("scan cancelled")

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

// progressLine returns a hook that keeps a single status line updated on w and
// a function that clears it again. Both are no-ops unless enabled.
func progressLine(w io.Writer, enabled bool, noun string) (func(count, bytes int64), func()) {
	if !enabled {
		return nil, func() {}
	}

	// Hide cursor for in-place updates; restore on exit.
	fmt.Fprint(w, "\033[?25l")

	hook := func(count, bytes int64) {
		msg := fmt.Sprintf("Scanning… %d %s, %s",
			count, noun, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
		fmt.Fprintf(w, "\r\033[2K%s\r", msg)
	}

	done := func() {
		fmt.Fprint(w, "\r\033[2K\r")
		fmt.Fprint(w, "\033[?25h")
	}

	return hook, done
}

// scanOptions controls runScan.
type scanOptions struct {
	root     string
	timeout  time.Duration
	progress bool
}

// runScan scans opt.root through a session. When ctx is cancelled or the
// timeout expires the scan is stopped and the partial tree is kept.
func runScan(ctx context.Context, e *env, errOut io.Writer, opt scanOptions) (*scan.Result, error) {
	hook, done := progressLine(errOut, opt.progress && isTerminal(errOut) && !e.log.Enabled(logger.LevelDebug), "items")
	defer done()

	scanner := scan.New(
		scan.WithLogger(e.log),
		scan.WithProgress(scan.ProgressHook(hook), e.cfg.ProgressInterval),
	)
	session := scan.NewSession(scanner, scan.WithSessionLogger(e.log))

	if opt.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opt.timeout)
		defer cancel()
	}

	if _, err := session.Start(context.WithoutCancel(ctx), opt.root, e.matcher); err != nil {
		return nil, err
	}

	finished := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			session.Stop(true)
		case <-finished:
		}
	}()

	session.Wait()
	close(finished)

	result := session.Current()
	if result == nil {
		return nil, errCancelled
	}

	if !result.Complete {
		e.log.Warnf("scan of %s was interrupted; showing the partial tree", result.Root.Path)
	}

	return result, nil
}
