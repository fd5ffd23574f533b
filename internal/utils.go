package utils

import (
	"context"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

var QuitChan = make(chan os.Signal, 1)

// SignalContext returns a context canceled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signal.Notify(QuitChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-QuitChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(QuitChan)
		cancel()
	}
}

// BaseName returns the file name of a local path or object key without its
// extension.
func BaseName(ref string) string {
	name := path.Base(filepath.ToSlash(ref))
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSuffix(name, path.Ext(name))
}
