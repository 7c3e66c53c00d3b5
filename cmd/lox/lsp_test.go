package main

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/digital-codex/jlox/lox"
)

const lspSample = `class Animal {
  speak(sound) {
    print sound;
  }
}
class Dog < Animal {}
var rex = Dog();
fun greet(name, times) {
  var count = 0;
  while (count < times) { print name; count = count + 1; }
}
`

func TestDiagnosticsForSourceWithoutErrors(t *testing.T) {
	diags := diagnosticsForSource(lspSample)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %#v", diags)
	}
}

func TestDiagnosticsForSourceWithErrors(t *testing.T) {
	source := "var a = 1\nprint this;\n"
	diags := diagnosticsForSource(source)
	if len(diags) != 1 {
		t.Fatalf("expected one parse diagnostic, got %#v", diags)
	}
	first := diags[0]
	if first.Severity == nil || *first.Severity != protocol.DiagnosticSeverityError {
		t.Fatalf("expected error severity, got %#v", first.Severity)
	}
	if first.Message != "Error at 'print': Expect ';' after variable declaration." {
		t.Fatalf("unexpected message: %q", first.Message)
	}
	if first.Range.Start.Line != 1 || first.Range.Start.Character != 0 || first.Range.End.Character != 5 {
		t.Fatalf("unexpected range: %#v", first.Range)
	}
}

func TestDiagnosticsForSourceResolverErrors(t *testing.T) {
	diags := diagnosticsForSource("print this;\n")
	if len(diags) != 1 {
		t.Fatalf("expected one resolver diagnostic, got %#v", diags)
	}
	if !strings.Contains(diags[0].Message, "Can't use 'this' outside of a class.") {
		t.Fatalf("unexpected message: %q", diags[0].Message)
	}
}

func TestDiagnosticsAtEndHaveEmptyRange(t *testing.T) {
	diags := diagnosticsForSource("print 1")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %#v", diags)
	}
	d := diags[0]
	if !strings.HasPrefix(d.Message, "Error at end:") {
		t.Fatalf("unexpected message: %q", d.Message)
	}
	if d.Range.Start != d.Range.End {
		t.Fatalf("expected empty range at end, got %#v", d.Range)
	}
}

func TestCollectDeclarations(t *testing.T) {
	decls := collectDeclarations(lspSample)
	var got []string
	for _, d := range decls {
		got = append(got, d.Kind+":"+d.Name)
	}
	want := "class:Animal method:speak parameter:sound class:Dog variable:rex function:greet parameter:name parameter:times variable:count"
	if strings.Join(got, " ") != want {
		t.Fatalf("unexpected declarations:\n got %s\nwant %s", strings.Join(got, " "), want)
	}
}

func TestCompletionItemsIncludeDeclarations(t *testing.T) {
	engine := lox.MustNewEngine(lox.Config{})
	items := completionItems(engine, lspSample, "")
	labels := make(map[string]protocol.CompletionItemKind, len(items))
	for i, item := range items {
		if i > 0 && items[i-1].Label > item.Label {
			t.Fatalf("items are not sorted: %q before %q", items[i-1].Label, item.Label)
		}
		labels[item.Label] = *item.Kind
	}
	checks := map[string]protocol.CompletionItemKind{
		"class":  protocol.CompletionItemKindKeyword,
		"clock":  protocol.CompletionItemKindFunction,
		"greet":  protocol.CompletionItemKindFunction,
		"Animal": protocol.CompletionItemKindClass,
		"speak":  protocol.CompletionItemKindMethod,
		"rex":    protocol.CompletionItemKindVariable,
	}
	for label, kind := range checks {
		got, ok := labels[label]
		if !ok {
			t.Fatalf("missing completion %q", label)
		}
		if got != kind {
			t.Fatalf("completion %q has kind %v, want %v", label, got, kind)
		}
	}
}

func TestCompletionItemsFilterByPrefix(t *testing.T) {
	engine := lox.MustNewEngine(lox.Config{})
	items := completionItems(engine, lspSample, "cl")
	var got []string
	for _, item := range items {
		got = append(got, item.Label)
	}
	if strings.Join(got, ",") != "class,clock" {
		t.Fatalf("unexpected completions: %v", got)
	}
}

func TestHoverForDeclarationKeywordAndNative(t *testing.T) {
	engine := lox.MustNewEngine(lox.Config{})

	hover := hoverFor(engine, lspSample, "Dog")
	if hover == nil {
		t.Fatalf("expected hover for class")
	}
	content := hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(content.Value, "class Dog < Animal") {
		t.Fatalf("unexpected hover: %q", content.Value)
	}

	hover = hoverFor(engine, lspSample, "greet")
	content = hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(content.Value, "fun greet(name, times)") {
		t.Fatalf("unexpected hover: %q", content.Value)
	}

	hover = hoverFor(engine, lspSample, "while")
	content = hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(content.Value, "Lox keyword") {
		t.Fatalf("unexpected hover: %q", content.Value)
	}

	hover = hoverFor(engine, lspSample, "clock")
	content = hover.Contents.(protocol.MarkupContent)
	if !strings.Contains(content.Value, "Native function") {
		t.Fatalf("unexpected hover: %q", content.Value)
	}

	if hoverFor(engine, lspSample, "nothingHere") != nil {
		t.Fatalf("expected no hover for unknown word")
	}
}

func TestExtractPrefixAndWord(t *testing.T) {
	text := "var rex = Dog();\nrex.spe"
	if got := extractPrefix(text, protocol.Position{Line: 1, Character: 7}); got != "spe" {
		t.Fatalf("extractPrefix = %q", got)
	}
	if got := extractPrefix(text, protocol.Position{Line: 0, Character: 0}); got != "" {
		t.Fatalf("extractPrefix at start = %q", got)
	}
	if got := extractWord(text, protocol.Position{Line: 0, Character: 11}); got != "Dog" {
		t.Fatalf("extractWord = %q", got)
	}
	if got := extractWord(text, protocol.Position{Line: 0, Character: 3}); got != "" {
		t.Fatalf("extractWord on space = %q", got)
	}
	if got := extractWord(text, protocol.Position{Line: 9, Character: 0}); got != "" {
		t.Fatalf("extractWord past end = %q", got)
	}
}

func TestLSPHandlersUseDocumentStore(t *testing.T) {
	s := newLSPServer()
	uri := protocol.DocumentUri("file:///tmp/sample.lox")
	s.docs[string(uri)] = lspSample

	pos := protocol.Position{Line: 6, Character: 11}
	hover, err := s.textDocumentHover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     pos,
		},
	})
	if err != nil || hover == nil {
		t.Fatalf("hover failed: %v %#v", err, hover)
	}

	result, err := s.textDocumentDefinition(nil, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     pos,
		},
	})
	if err != nil {
		t.Fatalf("definition failed: %v", err)
	}
	loc, ok := result.(protocol.Location)
	if !ok {
		t.Fatalf("unexpected definition result %T", result)
	}
	if loc.Range.Start.Line != 5 || loc.Range.Start.Character != 6 || loc.Range.End.Character != 9 {
		t.Fatalf("unexpected definition range: %#v", loc.Range)
	}

	missing, err := s.textDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///tmp/other.lox"},
			Position:     pos,
		},
	})
	if err != nil || missing != nil {
		t.Fatalf("expected nil completion for unknown document, got %#v %v", missing, err)
	}
}
