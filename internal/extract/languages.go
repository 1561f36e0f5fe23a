package extract

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// LanguageRegistry maps file extensions to LanguageConfig and tree-sitter
// grammars for the languages CodeExtractor recovers symbols from.
type LanguageRegistry struct {
	mu          sync.RWMutex
	configs     map[string]*LanguageConfig
	extToLang   map[string]string
	tsLanguages map[string]*sitter.Language
}

func newLanguageRegistry() *LanguageRegistry {
	r := &LanguageRegistry{
		configs:     make(map[string]*LanguageConfig),
		extToLang:   make(map[string]string),
		tsLanguages: make(map[string]*sitter.Language),
	}
	r.registerGo()
	r.registerTypeScript()
	r.registerJavaScript()
	r.registerPython()
	return r
}

// GetByExtension resolves a file extension (with or without the leading
// dot) to its LanguageConfig.
func (r *LanguageRegistry) GetByExtension(ext string) (*LanguageConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	langName, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	config, ok := r.configs[langName]
	return config, ok
}

// GetTreeSitterLanguage resolves a language name (as named in a
// LanguageConfig) to its tree-sitter grammar.
func (r *LanguageRegistry) GetTreeSitterLanguage(name string) (*sitter.Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lang, ok := r.tsLanguages[name]
	return lang, ok
}

func (r *LanguageRegistry) registerLanguage(config *LanguageConfig, tsLang *sitter.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.configs[config.Name] = config
	r.tsLanguages[config.Name] = tsLang
	for _, ext := range config.Extensions {
		r.extToLang[ext] = config.Name
	}
}

func (r *LanguageRegistry) registerGo() {
	r.registerLanguage(&LanguageConfig{
		Name:          "go",
		Extensions:    []string{".go"},
		FunctionTypes: []string{"function_declaration"},
		MethodTypes:   []string{"method_declaration"},
		TypeDefTypes:  []string{"type_declaration"},
		NameField:     "name",
	}, golang.GetLanguage())
}

func (r *LanguageRegistry) registerTypeScript() {
	ts := &LanguageConfig{
		Name:          "typescript",
		Extensions:    []string{".ts"},
		FunctionTypes: []string{"function_declaration"},
		MethodTypes:   []string{"method_definition"},
		TypeDefTypes:  []string{"interface_declaration", "type_alias_declaration", "class_declaration"},
		NameField:     "name",
	}
	r.registerLanguage(ts, typescript.GetLanguage())

	r.registerLanguage(&LanguageConfig{
		Name:          "tsx",
		Extensions:    []string{".tsx"},
		FunctionTypes: ts.FunctionTypes,
		MethodTypes:   ts.MethodTypes,
		TypeDefTypes:  ts.TypeDefTypes,
		NameField:     ts.NameField,
	}, tsx.GetLanguage())
}

func (r *LanguageRegistry) registerJavaScript() {
	js := &LanguageConfig{
		Name:          "javascript",
		Extensions:    []string{".js", ".mjs"},
		FunctionTypes: []string{"function_declaration", "function"},
		MethodTypes:   []string{"method_definition"},
		TypeDefTypes:  []string{"class_declaration"},
		NameField:     "name",
	}
	r.registerLanguage(js, javascript.GetLanguage())

	// JSX shares JavaScript's grammar; only the extension differs.
	r.registerLanguage(&LanguageConfig{
		Name:          "jsx",
		Extensions:    []string{".jsx"},
		FunctionTypes: js.FunctionTypes,
		MethodTypes:   js.MethodTypes,
		TypeDefTypes:  js.TypeDefTypes,
		NameField:     js.NameField,
	}, javascript.GetLanguage())
}

func (r *LanguageRegistry) registerPython() {
	// Python methods surface as function_definition nodes nested inside a
	// class_definition; topLevelSymbols only looks at root-level children,
	// so the class is reported as a type and its methods are not reported.
	r.registerLanguage(&LanguageConfig{
		Name:          "python",
		Extensions:    []string{".py"},
		FunctionTypes: []string{"function_definition"},
		TypeDefTypes:  []string{"class_definition"},
		NameField:     "name",
	}, python.GetLanguage())
}

var defaultRegistry = newLanguageRegistry()

// DefaultRegistry returns the shared registry covering Go, TypeScript/TSX,
// JavaScript/JSX, and Python.
func DefaultRegistry() *LanguageRegistry {
	return defaultRegistry
}
