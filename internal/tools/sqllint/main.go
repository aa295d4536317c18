// Command sqllint verifies the inline SQL convention: every SQL string
// constant must open with a `--sql <uuid>` marker line, and no two statements
// may share a marker. Markers are how log lines map back to statements, so a
// duplicate is as bad as a missing one.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	sqlMarkerPattern  = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)
)

type finding struct {
	file    string
	name    string
	line    int
	message string
}

type linter struct {
	fset     *token.FileSet
	seen     map[string]string // marker uuid -> "file:const"
	findings []finding
}

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"."}
	}

	l := &linter{fset: token.NewFileSet(), seen: map[string]string{}}

	for _, target := range targets {
		if err := l.lintTarget(target); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(l.findings) > 0 {
		fmt.Fprintln(os.Stderr, "sqllint: inline SQL convention violations")
		for _, f := range l.findings {
			fmt.Fprintf(os.Stderr, "  %s:%d %s (%s)\n", f.file, f.line, f.message, f.name)
		}
		os.Exit(1)
	}
}

func (l *linter) lintTarget(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if filepath.Ext(target) == ".go" {
			return l.lintFile(target)
		}
		return nil
	}
	return filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		return l.lintFile(path)
	})
}

func (l *linter) lintFile(path string) error {
	file, err := parser.ParseFile(l.fset, path, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	ast.Inspect(file, func(n ast.Node) bool {
		vs, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		name := joinNames(vs.Names)
		for _, value := range vs.Values {
			bl, ok := value.(*ast.BasicLit)
			if !ok || bl.Kind != token.STRING {
				continue
			}
			raw, err := unquote(bl.Value)
			if err != nil || !sqlKeywordPattern.MatchString(raw) {
				continue
			}
			line := l.fset.Position(bl.Pos()).Line
			match := sqlMarkerPattern.FindStringSubmatch(firstLine(raw))
			if match == nil {
				l.report(path, name, line, "missing or invalid --sql <uuid> marker")
				continue
			}
			marker := match[1]
			owner := path + ":" + name
			if prev, dup := l.seen[marker]; dup {
				l.report(path, name, line, "duplicate marker also used by "+prev)
				continue
			}
			l.seen[marker] = owner
		}
		return true
	})
	return nil
}

func (l *linter) report(file, name string, line int, message string) {
	l.findings = append(l.findings, finding{file: file, name: name, line: line, message: message})
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}

func joinNames(idents []*ast.Ident) string {
	parts := make([]string, 0, len(idents))
	for _, ident := range idents {
		if ident == nil {
			continue
		}
		parts = append(parts, ident.Name)
	}
	return strings.Join(parts, ",")
}
