package scriptindex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/fxamacker/cbor/v2"
)

const formatVersion = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("scriptindex: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

type Entry struct {
	Name string `cbor:"name"`
	Path string `cbor:"path"`
}

// Index maps generated script names to paths. Entries keep the order the
// paths were given to Build.
type Index struct {
	Version int     `cbor:"version"`
	Entries []Entry `cbor:"entries"`

	byName map[string]string
}

// Build names each path after its file stem in upper case with a
// per-stem counter suffix, e.g. "closure.lox" becomes CLOSURE_1 and a
// second "closure.lox" CLOSURE_2. Stems starting with a digit get a "$"
// prefix so every name is a valid identifier.
func Build(paths []string) *Index {
	idx := &Index{Version: formatVersion, Entries: make([]Entry, 0, len(paths))}
	counter := make(map[string]int)
	for _, path := range paths {
		stem := scriptStem(path)
		counter[stem]++
		idx.Entries = append(idx.Entries, Entry{
			Name: stem + "_" + strconv.Itoa(counter[stem]),
			Path: path,
		})
	}
	idx.reindex()
	return idx
}

func scriptStem(path string) string {
	base := filepath.Base(path)
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	stem := strings.ToUpper(strings.TrimSpace(base))
	if stem == "" {
		stem = "SCRIPT"
	}
	if unicode.IsDigit(rune(stem[0])) {
		stem = "$" + stem
	}
	return stem
}

func (idx *Index) reindex() {
	idx.byName = make(map[string]string, len(idx.Entries))
	for _, entry := range idx.Entries {
		idx.byName[entry.Name] = entry.Path
	}
}

// Lookup returns the path registered under name.
func (idx *Index) Lookup(name string) (string, bool) {
	path, ok := idx.byName[name]
	return path, ok
}

// Names lists every generated name in sorted order.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}

func (idx *Index) Paths() []string {
	paths := make([]string, len(idx.Entries))
	for i, entry := range idx.Entries {
		paths[i] = entry.Path
	}
	return paths
}

// Marshal encodes idx as canonical CBOR.
func Marshal(idx *Index) ([]byte, error) {
	return encMode.Marshal(idx)
}

func Unmarshal(data []byte) (*Index, error) {
	var idx Index
	if err := cbor.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("scriptindex: unmarshal index: %w", err)
	}
	if idx.Version != formatVersion {
		return nil, fmt.Errorf("scriptindex: unsupported index version %d", idx.Version)
	}
	idx.reindex()
	return &idx, nil
}

// Write stores idx at path, creating parent directories as needed.
func Write(path string, idx *Index) error {
	data, err := Marshal(idx)
	if err != nil {
		return fmt.Errorf("scriptindex: marshal index: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("scriptindex: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scriptindex: %w", err)
	}
	log.Infof("wrote %d scripts to %s", len(idx.Entries), path)
	return nil
}

func Read(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scriptindex: %w", err)
	}
	return Unmarshal(data)
}
