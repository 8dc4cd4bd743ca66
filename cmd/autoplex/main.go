package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/onelouder/autoplex/internal/cli"
)

func isEntryFilename(s string) bool {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, `/\`) {
		return false
	}
	lower := strings.ToLower(s)
	return len(s) > len(".html") && (strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm"))
}

func rewriteDirectEntryLookupArgs(argv []string) []string {
	// `autoplex <file>.html` works like `autoplex journal show <file>.html`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is
	// rewritten before parsing. Persistent flags may come first, so look for
	// the first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--server":    true,
		"--config":    true,
		"--log-level": true,
		"--format":    true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insert := func(at int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:at]...)
		out = append(out, "journal", "show")
		return append(out, argv[at:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isEntryFilename(argv[i+1]) {
				return insert(i)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isEntryFilename(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectEntryLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
