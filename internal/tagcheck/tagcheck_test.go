package tagcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package models

import "time"

type Clean struct {
	ID      int       ` + "`serde:\"id\"`" + `
	Created time.Time ` + "`serde:\"created,with=unix\"`" + `
	Tags    []string  ` + "`serde:\"tags,skip_if=empty\"`" + `
	Ignored string    ` + "`serde:\"-\"`" + `
	secret  string    ` + "`serde:\"-\"`" + `
	Audit   ` + "`serde:\",flatten\"`" + `
}

type Audit struct {
	By string ` + "`serde:\"by\"`" + `
}

type Broken struct {
	Name   string ` + "`serde:\"name,bogus\"`" + `
	Title  string ` + "`serde:\"name\"`" + `
	Count  int    ` + "`serde:\",flatten\"`" + `
	Level  string ` + "`serde:\"level,enum\"`" + `
	Stamp  int64  ` + "`serde:\"stamp,with=epoch\"`" + `
	hidden int    ` + "`serde:\"hidden\"`" + `
	X, Y   int    ` + "`serde:\"coord\"`" + `
}
`

func messages(findings []Finding) map[string][]string {
	out := make(map[string][]string)
	for _, f := range findings {
		out[f.Struct+"."+f.Field] = append(out[f.Struct+"."+f.Field], f.Message)
	}
	return out
}

func TestCheckSource(t *testing.T) {
	findings, err := New(false).CheckSource("models.go", []byte(source))
	require.NoError(t, err)

	got := messages(findings)
	assert.NotContains(t, got, "Clean.ID")
	assert.NotContains(t, got, "Clean.Audit")
	assert.NotContains(t, got, "Clean.secret")
	assert.NotContains(t, got, "Broken.Stamp", "codec names are not checked outside strict mode")

	assert.Equal(t, []string{"'bogus': unknown attribute 'bogus'"}, got["Broken.Name"])
	assert.Equal(t, []string{"name 'name' is also used by field 'Name'"}, got["Broken.Title"])
	assert.Equal(t, []string{"flatten requires a record type, got int"}, got["Broken.Count"])
	assert.Equal(t, []string{"enum requires an integer-backed type, got string"}, got["Broken.Level"])
	assert.Equal(t, []string{"tag on unexported field is ignored"}, got["Broken.hidden"])
	assert.Equal(t, []string{"tag is shared by several fields"}, got["Broken.X,Y"])
	assert.Equal(t, []string{"name 'coord' is also used by field 'X'"}, got["Broken.Y"])

	for i := 1; i < len(findings); i++ {
		assert.LessOrEqual(t, findings[i-1].Pos.Line, findings[i].Pos.Line)
	}
	assert.Equal(t, "models.go", findings[0].Pos.Filename)
}

func TestCheckSource_Strict(t *testing.T) {
	findings, err := New(true).CheckSource("models.go", []byte(source))
	require.NoError(t, err)

	got := messages(findings)
	assert.Equal(t, []string{"'with=epoch': unknown codec 'epoch'"}, got["Broken.Stamp"])
	assert.NotContains(t, got, "Clean.Created")
	assert.NotContains(t, got, "Clean.Tags")
}

func TestCheckSource_ParseError(t *testing.T) {
	_, err := New(false).CheckSource("bad.go", []byte("package models\ntype X struct {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse file bad.go")
}

func TestCheckPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.go"), []byte(source), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not go"), 0o644))

	skipped := filepath.Join(dir, "testdata")
	require.NoError(t, os.Mkdir(skipped, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(skipped, "broken.go"), []byte("package broken\ntype"), 0o644))

	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "more.go"),
		[]byte("package sub\n\ntype More struct {\n\tA int `serde:\",skip=yes\"`\n}\n"), 0o644))

	findings, err := New(false).CheckPaths(dir)
	require.NoError(t, err)

	got := messages(findings)
	assert.Contains(t, got, "Broken.Name")
	assert.Equal(t, []string{"'skip=yes': 'skip' does not take a value"}, got["More.A"])

	_, err = New(false).CheckPaths(filepath.Join(dir, "missing.go"))
	assert.Error(t, err)
}

func TestAsError(t *testing.T) {
	assert.NoError(t, AsError(nil))

	findings, err := New(false).CheckSource("models.go", []byte(source))
	require.NoError(t, err)

	err = AsError(findings)
	require.Error(t, err)
	errs, ok := err.(errsx.Map)
	require.True(t, ok, "expected error to be of type errsx.Map")
	assert.Len(t, errs, 7)
}
