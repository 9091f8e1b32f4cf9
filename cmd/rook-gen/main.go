// Command rook-gen generates explicit subscription tables from directive
// comments, trading the original idea of runtime reflection for code the
// compiler checks.
//
// A method carrying a rook:handle directive becomes one row of its receiver's
// Subscriptions table:
//
//	// Queue a welcome task for the new user.
//	//
//	// rook:handle /Auth/UserRegistered
//	// rook:emit /Tasks/Created
//	func (t *TaskManager) BufferWelcomeTask(ctx context.Context, payload any) error
//
// For every package that contains directives, rook-gen writes
// <pkg>_bindings.gen.go holding a Subscriptions() []api.Binding method per
// receiver type. When any of a receiver's directives include rook:emit, a
// Contracts() []contract.Operation skeleton is generated as well, using the
// first plain doc line of each method as the operation description. Methods
// carrying rook:handle must already have the bus.Handler signature.
//
// Output is deterministic: files, receivers, and methods are emitted in
// sorted order.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-openapi/swag"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"mvdan.cc/gofumpt/format"
)

const (
	handleDirective = "rook:handle"
	emitDirective   = "rook:emit"
	generatedSuffix = "_bindings.gen.go"

	apiImport      = "github.com/casualjim/rook/api"
	contractImport = "github.com/casualjim/rook/contract"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelInfo}),
	))
}

// osExit is swapped out in tests.
var osExit = os.Exit

// binding is one directive-carrying method.
type binding struct {
	recv    string // receiver type name
	recvVar string // receiver variable name as written in the source
	ptr     bool   // pointer receiver
	method  string
	topic   string   // rook:handle topic, empty for emit-only methods
	emits   []string // rook:emit topics
	doc     string   // first plain doc line, the generated contract description
}

// collectBindings walks the file's method declarations and extracts every
// rook directive. Malformed directives fail the run rather than silently
// producing a table with holes.
func collectBindings(file *ast.File) ([]binding, error) {
	var bindings []binding
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || fn.Doc == nil {
			continue
		}

		b := binding{method: fn.Name.Name}
		b.recv, b.recvVar, b.ptr = receiver(fn)

		for _, comment := range fn.Doc.List {
			text := strings.TrimSpace(strings.TrimPrefix(comment.Text, "//"))
			switch {
			case strings.HasPrefix(text, handleDirective):
				topic := strings.TrimSpace(strings.TrimPrefix(text, handleDirective))
				if topic == "" {
					return nil, fmt.Errorf("%s.%s: %s directive needs a topic", b.recv, b.method, handleDirective)
				}
				if b.topic != "" {
					return nil, fmt.Errorf("%s.%s: duplicate %s directive", b.recv, b.method, handleDirective)
				}
				b.topic = topic
			case strings.HasPrefix(text, emitDirective):
				topic := strings.TrimSpace(strings.TrimPrefix(text, emitDirective))
				if topic == "" {
					return nil, fmt.Errorf("%s.%s: %s directive needs a topic", b.recv, b.method, emitDirective)
				}
				b.emits = append(b.emits, topic)
			case text != "" && b.doc == "":
				b.doc = text
			}
		}

		if b.topic == "" && len(b.emits) == 0 {
			continue
		}
		if b.recv == "" {
			return nil, fmt.Errorf("%s: rook directives need a named receiver type", b.method)
		}
		if b.topic != "" {
			if err := checkHandlerSignature(fn); err != nil {
				return nil, err
			}
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func receiver(fn *ast.FuncDecl) (name, varName string, ptr bool) {
	field := fn.Recv.List[0]
	if len(field.Names) > 0 {
		varName = field.Names[0].Name
	}
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		ptr = true
		if ident, ok := t.X.(*ast.Ident); ok {
			name = ident.Name
		}
	case *ast.Ident:
		name = t.Name
	}
	return name, varName, ptr
}

// checkHandlerSignature verifies the rough shape of a handler: two
// parameters, one result. Types are left to the compiler.
func checkHandlerSignature(fn *ast.FuncDecl) error {
	if fn.Type.Params.NumFields() != 2 || fn.Type.Results.NumFields() != 1 {
		return fmt.Errorf("%s: %s methods need the handler signature func(context.Context, any) error",
			fn.Name.Name, handleDirective)
	}
	return nil
}

// createBindingsSource renders the generated file for one package and formats
// it with gofumpt.
func createBindingsSource(pkgName string, bindings []binding) ([]byte, error) {
	groups := make(map[string][]binding)
	for _, b := range bindings {
		groups[b.recv] = append(groups[b.recv], b)
	}
	recvs := make([]string, 0, len(groups))
	for recv := range groups {
		recvs = append(recvs, recv)
	}
	slices.Sort(recvs)

	var needsAPI, needsContract bool
	for _, group := range groups {
		for _, b := range group {
			if b.topic != "" {
				needsAPI = true
			}
			if len(b.emits) > 0 {
				needsContract = true
			}
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by rook-gen. DO NOT EDIT.\n\npackage %s\n\n", pkgName)
	switch {
	case needsAPI && needsContract:
		fmt.Fprintf(&buf, "import (\n\t%q\n\t%q\n)\n", apiImport, contractImport)
	case needsAPI:
		fmt.Fprintf(&buf, "import %q\n", apiImport)
	case needsContract:
		fmt.Fprintf(&buf, "import %q\n", contractImport)
	}

	for _, recv := range recvs {
		group := groups[recv]
		slices.SortFunc(group, func(a, b binding) int {
			return strings.Compare(a.method, b.method)
		})

		recvVar := group[0].recvVar
		if recvVar == "" {
			recvVar = swag.ToVarName(recv)
		}
		star := ""
		if group[0].ptr {
			star = "*"
		}

		var handles, emitters []binding
		for _, b := range group {
			if b.topic != "" {
				handles = append(handles, b)
			}
			if len(b.emits) > 0 {
				emitters = append(emitters, b)
			}
		}

		if len(handles) > 0 {
			fmt.Fprintf(&buf, "\n// Subscriptions returns the binding table built from %s directives.\n", handleDirective)
			fmt.Fprintf(&buf, "func (%s %s%s) Subscriptions() []api.Binding {\n\treturn []api.Binding{\n", recvVar, star, recv)
			for _, b := range handles {
				fmt.Fprintf(&buf, "\t\t{Topic: %q, Op: %q, Fn: %s.%s},\n", b.topic, b.method, recvVar, b.method)
			}
			fmt.Fprintf(&buf, "\t}\n}\n")
		}

		if len(emitters) > 0 {
			fmt.Fprintf(&buf, "\n// Contracts returns the operations declared by rook directives.\n")
			fmt.Fprintf(&buf, "func (%s %s%s) Contracts() []contract.Operation {\n\treturn []contract.Operation{\n", recvVar, star, recv)
			for _, b := range group {
				writeOperation(&buf, b)
			}
			fmt.Fprintf(&buf, "\t}\n}\n")
		}
	}

	return format.Source(buf.Bytes(), format.Options{})
}

func writeOperation(buf *bytes.Buffer, b binding) {
	var opts []string
	if b.doc != "" {
		opts = append(opts, fmt.Sprintf("contract.Description(%q)", b.doc))
	}
	if b.topic != "" {
		opts = append(opts, fmt.Sprintf("contract.On(%q)", b.topic))
	}
	if len(b.emits) > 0 {
		quoted := make([]string, len(b.emits))
		for i, topic := range b.emits {
			quoted[i] = fmt.Sprintf("%q", topic)
		}
		opts = append(opts, fmt.Sprintf("contract.Emits(%s)", strings.Join(quoted, ", ")))
	}

	if len(opts) == 0 {
		fmt.Fprintf(buf, "\t\tcontract.Must(%q),\n", b.method)
		return
	}
	fmt.Fprintf(buf, "\t\tcontract.Must(%q,\n", b.method)
	for _, opt := range opts {
		fmt.Fprintf(buf, "\t\t\t%s,\n", opt)
	}
	fmt.Fprintf(buf, "\t\t),\n")
}

func writeBindingsFile(dir, pkgName string, bindings []binding) error {
	src, err := createBindingsSource(pkgName, bindings)
	if err != nil {
		log.Error().Err(err).Str("package", pkgName).Msg("Error rendering bindings")
		return err
	}
	out := filepath.Join(dir, pkgName+generatedSuffix)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		log.Error().Err(err).Str("file", out).Msg("Error writing file")
		return err
	}
	log.Info().Str("file", out).Msg("Generated file")
	return nil
}

// processGoFile regenerates the binding table from a single source file. Any
// directive methods the package keeps in other files are not seen; point the
// tool at the directory to pick up everything.
func processGoFile(path string) error {
	fset := token.NewFileSet()
	fileAST, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Error parsing file")
		return err
	}

	bindings, err := collectBindings(fileAST)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Error collecting directives")
		return err
	}
	if len(bindings) == 0 {
		return nil
	}
	return writeBindingsFile(filepath.Dir(path), fileAST.Name.Name, bindings)
}

// processDir regenerates the binding table for the package in dir, visiting
// source files in sorted order and skipping tests and generated files.
func processDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Error().Err(err).Str("path", dir).Msg("Error accessing path")
		return err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") || strings.HasSuffix(name, generatedSuffix) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	fset := token.NewFileSet()
	var pkgName string
	var all []binding
	for _, name := range names {
		path := filepath.Join(dir, name)
		fileAST, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Error parsing file")
			return err
		}
		pkgName = fileAST.Name.Name

		bindings, err := collectBindings(fileAST)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("Error collecting directives")
			return err
		}
		all = append(all, bindings...)
	}
	if len(all) == 0 {
		return nil
	}
	return writeBindingsFile(dir, pkgName, all)
}

func main() {
	path := flag.String("path", ".", "file or directory to scan for rook directives")
	flag.Parse()

	info, err := os.Stat(*path)
	if err != nil {
		log.Error().Err(err).Str("path", *path).Msg("Error accessing path")
		osExit(1)
		return
	}

	if info.IsDir() {
		err = processDir(*path)
	} else {
		err = processGoFile(*path)
	}
	if err != nil {
		osExit(1)
	}
}
