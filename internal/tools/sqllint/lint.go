package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	sqlKeyword = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with|create|alter|drop)\b`)
	marker     = regexp.MustCompile(`^--sql ([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)
)

type finding struct {
	file    string
	line    int
	name    string
	message string
}

func (f finding) String() string {
	return fmt.Sprintf("%s:%d %s (%s)", f.file, f.line, f.message, f.name)
}

type query struct {
	file string
	line int
	name string
	sql  string
}

// lintPaths walks files and directories, skipping tests and hidden or vendored trees.
func lintPaths(targets []string) ([]finding, error) {
	var queries []query
	for _, target := range targets {
		err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != target && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			qs, err := collect(path, src)
			if err != nil {
				return err
			}
			queries = append(queries, qs...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return check(queries), nil
}

// collect returns every string constant or variable that reads like SQL.
func collect(path string, src []byte) ([]query, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return nil, err
	}
	var out []query
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok {
			return true
		}
		for i, value := range spec.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			raw, err := unquote(lit.Value)
			if err != nil || !sqlKeyword.MatchString(raw) {
				continue
			}
			name := "_"
			if i < len(spec.Names) {
				name = spec.Names[i].Name
			}
			out = append(out, query{file: path, line: fset.Position(lit.Pos()).Line, name: name, sql: raw})
		}
		return true
	})
	return out, nil
}

func check(queries []query) []finding {
	var findings []finding
	seen := make(map[string]query)
	for _, q := range queries {
		m := marker.FindStringSubmatch(firstLine(q.sql))
		if m == nil {
			findings = append(findings, finding{file: q.file, line: q.line, name: q.name, message: "missing or invalid --sql <uuid> marker"})
			continue
		}
		if prev, dup := seen[m[1]]; dup {
			findings = append(findings, finding{
				file:    q.file,
				line:    q.line,
				name:    q.name,
				message: fmt.Sprintf("marker %s already used by %s", m[1], prev.name),
			})
			continue
		}
		seen[m[1]] = q
	}
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].file != findings[j].file {
			return findings[i].file < findings[j].file
		}
		return findings[i].line < findings[j].line
	})
	return findings
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if strings.HasPrefix(v, "`") {
		return strings.Trim(v, "`"), nil
	}
	return strconv.Unquote(v)
}
