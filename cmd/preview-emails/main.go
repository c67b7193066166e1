// Command preview-emails prints the identifier each display name read from
// stdin would receive, without touching a database.
//
//	preview-emails -domain acme.com [-used taken.txt] < names.txt
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tendant/persona-idgen/pkg/identifier"
)

func main() {
	domain := flag.String("domain", "", "namespace appended to every identifier (required)")
	usedPath := flag.String("used", "", "file with one already used identifier per line")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	used := identifier.NewSet()
	if *usedPath != "" {
		f, err := os.Open(*usedPath)
		if err != nil {
			logger.Error("failed to open used identifiers", "path", *usedPath, "error", err)
			os.Exit(1)
		}
		used, err = readUsed(f)
		f.Close()
		if err != nil {
			logger.Error("failed to read used identifiers", "path", *usedPath, "error", err)
			os.Exit(1)
		}
	}

	if _, err := run(os.Stdin, os.Stdout, *domain, used, logger); err != nil {
		logger.Error("preview failed", "error", err)
		os.Exit(1)
	}
}

// maxNameBytes bounds a single display name. Longer lines are skipped.
const maxNameBytes = 4096

// run writes "name<TAB>identifier" for every non-blank line of in. Rejected
// names are logged and counted, not fatal.
func run(in io.Reader, out io.Writer, domain string, used identifier.Set, logger *slog.Logger) (skipped int, err error) {
	namespace := identifier.NormalizeNamespace(domain)
	if err := identifier.ValidateNamespace(namespace); err != nil {
		return 0, err
	}

	gen := identifier.NewGenerator(namespace, used)
	w := bufio.NewWriter(out)
	generated := 0
	line := 0
	err = eachLine(in, func(text string) {
		line++
		name := strings.TrimSpace(text)
		if name == "" {
			return
		}
		if len(name) > maxNameBytes {
			logger.Warn("skipping name", "line", line, "bytes", len(name), "error", "name too long")
			skipped++
			return
		}
		id, err := gen.Next(name)
		if err != nil {
			logger.Warn("skipping name", "line", line, "name", name, "error", err)
			skipped++
			return
		}
		fmt.Fprintf(w, "%s\t%s\n", name, id)
		generated++
	})
	if err != nil {
		return skipped, fmt.Errorf("read names: %w", err)
	}

	logger.Info("preview complete",
		"namespace", gen.Namespace(),
		"generated", generated,
		"skipped", skipped,
		"used", len(gen.Used()),
	)
	return skipped, w.Flush()
}

func readUsed(r io.Reader) (identifier.Set, error) {
	used := identifier.NewSet()
	err := eachLine(r, func(text string) {
		if id := identifier.NormalizeEmail(text); id != "" {
			used.Add(id)
		}
	})
	return used, err
}

// eachLine calls fn for every line of r without the line terminator. Lines
// have no length limit.
func eachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReader(r)
	for {
		text, err := br.ReadString('\n')
		if text != "" {
			fn(strings.TrimRight(text, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
