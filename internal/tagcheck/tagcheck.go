// Package tagcheck reports malformed serde struct tags in Go source files
// without compiling or loading them.
package tagcheck

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/hengadev/errsx"

	"github.com/hengadev/serdex/internal/attr"
)

// Finding is one problem found in a struct tag.
type Finding struct {
	Pos     token.Position
	Struct  string
	Field   string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: field '%s.%s': %s", f.Pos, f.Struct, f.Field, f.Message)
}

// Checker validates serde tags found in Go source.
type Checker struct {
	// Strict also reports codec and predicate names missing from the
	// registry of the running process. Programs usually register their own
	// at startup, so this is off by default.
	Strict bool

	fset     *token.FileSet
	findings []Finding
}

func New(strict bool) *Checker {
	return &Checker{Strict: strict, fset: token.NewFileSet()}
}

// CheckPaths checks every file and directory in paths. Directories are walked
// recursively, skipping vendor, testdata and hidden or underscore-prefixed
// entries.
func (c *Checker) CheckPaths(paths ...string) ([]Finding, error) {
	c.findings = nil
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := c.checkFile(path, nil); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if p != path && (name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(name, ".go") {
				return nil
			}
			return c.checkFile(p, nil)
		})
		if err != nil {
			return nil, err
		}
	}
	return c.sorted(), nil
}

// CheckSource checks a single file's contents.
func (c *Checker) CheckSource(filename string, src []byte) ([]Finding, error) {
	c.findings = nil
	if err := c.checkFile(filename, src); err != nil {
		return nil, err
	}
	return c.sorted(), nil
}

func (c *Checker) sorted() []Finding {
	slices.SortStableFunc(c.findings, func(a, b Finding) int {
		if a.Pos.Filename != b.Pos.Filename {
			return strings.Compare(a.Pos.Filename, b.Pos.Filename)
		}
		return a.Pos.Line - b.Pos.Line
	})
	return c.findings
}

func (c *Checker) checkFile(filename string, src any) error {
	if src == nil {
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		src = data
	}
	file, err := parser.ParseFile(c.fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return fmt.Errorf("failed to parse file %s: %w", filename, err)
	}

	ast.Inspect(file, func(n ast.Node) bool {
		if spec, ok := n.(*ast.TypeSpec); ok {
			if st, ok := spec.Type.(*ast.StructType); ok {
				c.checkStruct(spec.Name.Name, st)
			}
		}
		return true
	})
	return nil
}

func (c *Checker) checkStruct(name string, st *ast.StructType) {
	if st.Fields == nil {
		return
	}

	owners := make(map[string]string)
	for _, field := range st.Fields.List {
		raw, ok := serdeTag(field)
		if !ok {
			continue
		}
		pos := c.fset.Position(field.Pos())

		names := fieldNames(field)
		if len(names) > 1 {
			c.add(pos, name, strings.Join(names, ","), "tag is shared by several fields")
		}

		for _, fieldName := range names {
			if !ast.IsExported(fieldName) && len(field.Names) > 0 && strings.TrimSpace(raw) != "-" {
				c.add(pos, name, fieldName, "tag on unexported field is ignored")
				continue
			}

			tag, skipped := c.parse(pos, name, fieldName, raw)
			if skipped {
				continue
			}
			c.checkType(pos, name, fieldName, tag, field.Type)

			if tag.Attributes.Has(attr.NameFlatten) {
				continue
			}
			wire := wireName(fieldName, tag)
			if other, dup := owners[wire]; dup {
				c.add(pos, name, fieldName, fmt.Sprintf("name '%s' is also used by field '%s'", wire, other))
				continue
			}
			owners[wire] = fieldName
		}
	}
}

// parse reports tag errors and whether the field is skipped outright.
func (c *Checker) parse(pos token.Position, structName, fieldName, raw string) (attr.Tag, bool) {
	tag, err := attr.ParseTag(raw)
	if errs, ok := err.(errsx.Map); ok {
		keys := make([]string, 0, len(errs))
		for segment := range errs {
			keys = append(keys, segment)
		}
		slices.Sort(keys)
		for _, segment := range keys {
			if !c.Strict && registryLookup(segment) {
				continue
			}
			c.add(pos, structName, fieldName, fmt.Sprintf("'%s': %v", segment, errs[segment]))
		}
	}
	return tag, tag.Attributes.Has(attr.NameSkip)
}

// registryLookup reports segments that name a codec or predicate, which may
// be registered at runtime.
func registryLookup(segment string) bool {
	key, arg, _ := strings.Cut(segment, "=")
	key = strings.TrimSpace(key)
	return strings.TrimSpace(arg) != "" && (key == attr.NameWith || key == attr.NameSkipIf)
}

func (c *Checker) checkType(pos token.Position, structName, fieldName string, tag attr.Tag, expr ast.Expr) {
	if tag.Attributes.Has(attr.NameFlatten) && !mayBeRecord(expr) {
		c.add(pos, structName, fieldName, fmt.Sprintf("flatten requires a record type, got %s", exprString(expr)))
	}
	for _, a := range tag.Attributes {
		es, ok := a.(attr.EnumString)
		if !ok || es.Integer {
			continue
		}
		if ident, ok := expr.(*ast.Ident); ok && isBuiltin(ident.Name) && !isInteger(ident.Name) {
			c.add(pos, structName, fieldName, fmt.Sprintf("enum requires an integer-backed type, got %s", ident.Name))
		}
	}
}

func (c *Checker) add(pos token.Position, structName, fieldName, message string) {
	c.findings = append(c.findings, Finding{Pos: pos, Struct: structName, Field: fieldName, Message: message})
}

// AsError folds findings into an errsx.Map keyed by position and field, or
// returns nil when there are none.
func AsError(findings []Finding) error {
	messages := make(map[string][]string)
	var keys []string
	for _, f := range findings {
		key := fmt.Sprintf("%s %s.%s", f.Pos, f.Struct, f.Field)
		if _, seen := messages[key]; !seen {
			keys = append(keys, key)
		}
		messages[key] = append(messages[key], f.Message)
	}

	errs := make(errsx.Map)
	for _, key := range keys {
		errs.Set(key, errors.New(strings.Join(messages[key], "; ")))
	}
	return errs.AsError()
}

func serdeTag(field *ast.Field) (string, bool) {
	if field.Tag == nil {
		return "", false
	}
	unquoted, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return "", false
	}
	return reflect.StructTag(unquoted).Lookup(attr.TagName)
}

func fieldNames(field *ast.Field) []string {
	if len(field.Names) == 0 {
		return []string{embeddedName(field.Type)}
	}
	names := make([]string, len(field.Names))
	for i, n := range field.Names {
		names[i] = n.Name
	}
	return names
}

func embeddedName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(x.X)
	case *ast.SelectorExpr:
		return x.Sel.Name
	case *ast.Ident:
		return x.Name
	case *ast.IndexExpr:
		return embeddedName(x.X)
	}
	return exprString(expr)
}

func wireName(fieldName string, tag attr.Tag) string {
	for _, a := range tag.Attributes {
		if r, ok := a.(attr.Rename); ok {
			return r.Name
		}
	}
	if tag.Name != "" {
		return tag.Name
	}
	return fieldName
}

// mayBeRecord rejects type expressions that can never be a struct.
func mayBeRecord(expr ast.Expr) bool {
	switch x := expr.(type) {
	case *ast.StarExpr:
		return mayBeRecord(x.X)
	case *ast.Ident:
		return !isBuiltin(x.Name)
	case *ast.StructType, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr:
		return true
	}
	return false
}

func isBuiltin(name string) bool {
	switch name {
	case "bool", "string", "byte", "rune", "error", "any",
		"float32", "float64", "complex64", "complex128":
		return true
	}
	return isInteger(name)
}

func isInteger(name string) bool {
	switch name {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr":
		return true
	}
	return false
}

func exprString(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.StarExpr:
		return "*" + exprString(x.X)
	case *ast.SelectorExpr:
		return exprString(x.X) + "." + x.Sel.Name
	case *ast.ArrayType:
		if x.Len == nil {
			return "[]" + exprString(x.Elt)
		}
		return "[...]" + exprString(x.Elt)
	case *ast.MapType:
		return "map[" + exprString(x.Key) + "]" + exprString(x.Value)
	case *ast.ChanType:
		return "chan " + exprString(x.Value)
	case *ast.FuncType:
		return "func"
	case *ast.InterfaceType:
		return "interface"
	case *ast.StructType:
		return "struct"
	}
	return fmt.Sprintf("%T", expr)
}
