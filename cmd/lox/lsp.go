package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/digital-codex/jlox/lox"
)

const lspName = "lox-lsp"

var lspLog = commonlog.GetLogger("lox.lsp")

// lspServer publishes static diagnostics for open documents and answers
// completion, hover and definition requests from their syntax trees.
type lspServer struct {
	engine *lox.Engine

	mu   sync.Mutex
	docs map[string]string

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

func newLSPServer() *lspServer {
	s := &lspServer{
		engine:  lox.MustNewEngine(lox.Config{}),
		docs:    make(map[string]string),
		version: "0.1.0",
	}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}
	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

func lspCommand(args []string) error {
	fs := flag.NewFlagSet("lsp", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox lsp: %v", err)
	}
	if _, err := common.load("."); err != nil {
		return err
	}
	return newLSPServer().server.RunStdio()
}

func (s *lspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	lspLog.Infof("%s initializing", lspName)

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *lspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *lspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *lspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

func (s *lspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *lspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.docs[string(uri)] = whole.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, whole.Text)
	return nil
}

func (s *lspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *lspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

func (s *lspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	return completionItems(s.engine, text, prefix), nil
}

func (s *lspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return hoverFor(s.engine, text, word), nil
}

func (s *lspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.document(uri)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	decl, ok := findDeclaration(text, word)
	if !ok {
		return nil, nil
	}
	return protocol.Location{URI: uri, Range: tokenRange(decl.Pos, len([]rune(decl.Name)))}, nil
}

func (s *lspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnosticsForSource(text)
	lspLog.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnosticsForSource compiles text and converts every static error.
func diagnosticsForSource(text string) []protocol.Diagnostic {
	collector := &lox.CollectingReporter{}
	engine := lox.MustNewEngine(lox.Config{Reporter: collector})
	if _, err := engine.Compile(text); err == nil {
		return []protocol.Diagnostic{}
	}

	diagnostics := make([]protocol.Diagnostic, 0, len(collector.Static))
	for _, d := range collector.Static {
		severity := protocol.DiagnosticSeverityError
		source := lspName
		width := len([]rune(d.Lexeme))
		if d.AtEnd {
			width = 0
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    tokenRange(d.Pos, width),
			Severity: &severity,
			Source:   &source,
			Message:  "Error" + d.Where() + ": " + d.Message,
		})
	}
	return diagnostics
}

// tokenRange converts a 1-based source position to a 0-based LSP range.
func tokenRange(pos lox.Position, width int) protocol.Range {
	line := max(pos.Line-1, 0)
	col := max(pos.Column-1, 0)
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col + width)},
	}
}

// declaration is a named binding introduced by a var, fun or class
// statement, a method or a parameter.
type declaration struct {
	Name   string
	Kind   string
	Detail string
	Pos    lox.Position
}

// collectDeclarations walks every statement that parsed. Declarations
// appear in source order.
func collectDeclarations(text string) []declaration {
	program, _ := lox.Parse(text)
	var decls []declaration
	var walk func(stmts []lox.Statement)
	walkFunction := func(fn *lox.FunctionStmt, kind string) {
		decls = append(decls, declaration{
			Name:   fn.Name.Lexeme,
			Kind:   kind,
			Detail: functionSignature(fn),
			Pos:    fn.Name.Pos,
		})
		for _, param := range fn.Params {
			decls = append(decls, declaration{
				Name:   param.Lexeme,
				Kind:   "parameter",
				Detail: "parameter of " + fn.Name.Lexeme,
				Pos:    param.Pos,
			})
		}
		walk(fn.Body)
	}
	walk = func(stmts []lox.Statement) {
		for _, stmt := range stmts {
			switch typed := stmt.(type) {
			case *lox.VarStmt:
				decls = append(decls, declaration{
					Name:   typed.Name.Lexeme,
					Kind:   "variable",
					Detail: "var " + typed.Name.Lexeme,
					Pos:    typed.Name.Pos,
				})
			case *lox.FunctionStmt:
				walkFunction(typed, "function")
			case *lox.ClassStmt:
				decls = append(decls, declaration{
					Name:   typed.Name.Lexeme,
					Kind:   "class",
					Detail: classSignature(typed),
					Pos:    typed.Name.Pos,
				})
				for _, method := range typed.Methods {
					walkFunction(method, "method")
				}
			case *lox.BlockStmt:
				walk(typed.Statements)
			case *lox.IfStmt:
				walk([]lox.Statement{typed.Then})
				if typed.Else != nil {
					walk([]lox.Statement{typed.Else})
				}
			case *lox.WhileStmt:
				walk([]lox.Statement{typed.Body})
			}
		}
	}
	walk(program)
	return decls
}

func functionSignature(fn *lox.FunctionStmt) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	return fmt.Sprintf("fun %s(%s)", fn.Name.Lexeme, strings.Join(params, ", "))
}

func classSignature(cls *lox.ClassStmt) string {
	var b strings.Builder
	b.WriteString("class " + cls.Name.Lexeme)
	if cls.Superclass != nil {
		b.WriteString(" < " + cls.Superclass.Name.Lexeme)
	}
	if len(cls.Methods) > 0 {
		names := make([]string, len(cls.Methods))
		for i, m := range cls.Methods {
			names[i] = m.Name.Lexeme
		}
		b.WriteString(" { " + strings.Join(names, ", ") + " }")
	}
	return b.String()
}

func findDeclaration(text, name string) (declaration, bool) {
	for _, decl := range collectDeclarations(text) {
		if decl.Name == name {
			return decl, true
		}
	}
	return declaration{}, false
}

func completionItems(engine *lox.Engine, text, prefix string) []protocol.CompletionItem {
	seen := make(map[string]struct{})
	items := make([]protocol.CompletionItem, 0)
	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if !strings.HasPrefix(label, prefix) {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		items = append(items, protocol.CompletionItem{
			Label:  label,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	for _, keyword := range lox.Keywords() {
		add(keyword, protocol.CompletionItemKindKeyword, "keyword")
	}
	for _, name := range engine.Natives() {
		add(name, protocol.CompletionItemKindFunction, "native function")
	}
	for _, decl := range collectDeclarations(text) {
		kind := protocol.CompletionItemKindVariable
		switch decl.Kind {
		case "function":
			kind = protocol.CompletionItemKindFunction
		case "method":
			kind = protocol.CompletionItemKindMethod
		case "class":
			kind = protocol.CompletionItemKindClass
		}
		add(decl.Name, kind, decl.Detail)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func hoverFor(engine *lox.Engine, text, word string) *protocol.Hover {
	var value string
	if decl, ok := findDeclaration(text, word); ok {
		value = fmt.Sprintf("```lox\n%s\n```\n\nLox %s", decl.Detail, decl.Kind)
	} else {
		switch classifyWord(engine, word) {
		case "keyword":
			value = fmt.Sprintf("`%s`\n\nLox keyword", word)
		case "native":
			value = fmt.Sprintf("`%s`\n\nNative function", word)
		default:
			return nil
		}
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

func classifyWord(engine *lox.Engine, word string) string {
	for _, keyword := range lox.Keywords() {
		if word == keyword {
			return "keyword"
		}
	}
	for _, name := range engine.Natives() {
		if word == name {
			return "native"
		}
	}
	return "identifier"
}

// extractPrefix returns the identifier fragment before the cursor.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}
	start := col
	for start > 0 && isIdentRune(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}
	start := col
	for start > 0 && isIdentRune(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isIdentRune(line[end]) {
		end++
	}
	return string(line[start:end])
}

func lineAt(text string, pos protocol.Position) ([]rune, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return nil, 0, false
	}
	line := []rune(lines[pos.Line])
	col := min(int(pos.Character), len(line))
	return line, col, true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boolPtr(v bool) *bool {
	return &v
}
