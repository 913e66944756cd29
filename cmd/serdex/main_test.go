package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/serdex"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memoryStore) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s/%s", bucket, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) Create(_ context.Context, bucket, key, contentType string) (io.WriteCloser, error) {
	return &memoryObject{store: m, name: bucket + "/" + key, contentType: contentType}, nil
}

type memoryObject struct {
	bytes.Buffer
	store       *memoryStore
	name        string
	contentType string
}

func (o *memoryObject) Close() error {
	o.store.objects[o.name] = o.Bytes()
	o.store.types[o.name] = o.contentType
	return nil
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, a *app, stdin string, args ...string) result {
	t.Helper()
	t.Cleanup(func() {
		serdex.SetDefaultObservabilityHook(nil)
		serdex.ResetNaming()
	})

	var stdout, stderr bytes.Buffer
	root := a.rootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := a.execute(root, args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestVersion(t *testing.T) {
	res := run(t, newApp(), "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, serdex.VersionInfo()+"\n", res.stdout)

	res = run(t, newApp(), "", "version", "-o", "json")
	require.NoError(t, res.err)
	assert.Equal(t, `{"version":"`+serdex.Version+`"}`+"\n", res.stdout)

	res = run(t, newApp(), "", "version", "-o", "toml")
	assert.ErrorIs(t, res.err, serdex.ErrUnknownFormat)
}

func TestConvert_Stdin(t *testing.T) {
	res := run(t, newApp(), `{"id":7,"name":"alice"}`, "convert", "--from", "json", "--to", "yaml")
	require.NoError(t, res.err)
	assert.Equal(t, "id: 7\nname: alice\n", res.stdout)
}

func TestConvert_FieldRename(t *testing.T) {
	res := run(t, newApp(), `{"user_id":1,"nested":{"some_value":[true]}}`,
		"convert", "--from", "json", "--to", "json", "--field-rename", "camel")
	require.NoError(t, res.err)
	assert.Equal(t, `{"userId":1,"nested":{"someValue":[true]}}`+"\n", res.stdout)
}

func TestConvert_Files(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "user.json")
	out := filepath.Join(dir, "user.yml")
	require.NoError(t, os.WriteFile(in, []byte(`{"id":7,"tags":["a","b"]}`), 0o644))

	res := run(t, newApp(), "", "convert", "--in", in, "--out", out)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	back, err := serdex.Convert(data, "yaml", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"tags":["a","b"]}`, string(back))
}

func TestConvert_S3(t *testing.T) {
	store := newMemoryStore()
	store.objects["docs/in/user.json"] = []byte(`{"id":7,"ok":true}`)

	a := newApp()
	a.store = store

	res := run(t, a, "", "convert", "--in", "s3://docs/in/user.json", "--out", "s3://docs/out/", "--to", "msgpack")
	require.NoError(t, res.err)

	location := strings.TrimSpace(res.stdout)
	require.True(t, strings.HasPrefix(location, "s3://docs/out/"), location)
	require.True(t, strings.HasSuffix(location, ".msgpack"), location)

	name := strings.TrimPrefix(location, "s3://")
	assert.Equal(t, "application/msgpack", store.types[name])
	back, err := serdex.Convert(store.objects[name], "msgpack", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"ok":true}`, string(back))

	res = run(t, a, "", "convert", "--in", "s3://docs/missing.json", "--to", "yaml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "no such key")
}

func TestConvert_StoreCreatedOnce(t *testing.T) {
	calls := 0
	store := newMemoryStore()
	store.objects["b/k.json"] = []byte(`1`)

	a := newApp()
	a.newStore = func(context.Context, *serdex.StructuredLogger) (objectStore, error) {
		calls++
		return store, nil
	}

	res := run(t, a, "", "convert", "--in", "s3://b/k.json", "--out", "s3://b/k.yaml")
	require.NoError(t, res.err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "1\n", string(store.objects["b/k.yaml"]))
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing output format", []string{"convert", "--from", "json"}, "--to is required"},
		{"missing input format", []string{"convert", "--to", "json"}, "--from is required"},
		{"unknown format", []string{"convert", "--from", "json", "--to", "toml"}, "invalid format 'toml'"},
		{"bad policy", []string{"convert", "--from", "json", "--to", "yaml", "--field-rename", "loud"}, "invalid naming policy"},
		{"bad log level", []string{"--log-level", "chatty", "version"}, "chatty"},
		{"positional args", []string{"convert", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, newApp(), "{}", tt.args...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), tt.want)
		})
	}

	res := run(t, newApp(), `{"id":`, "convert", "--from", "json", "--to", "yaml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "convert json to yaml")
}

func TestMetrics(t *testing.T) {
	var metrics bytes.Buffer
	a := newApp()
	a.metricsTo = &metrics

	res := run(t, a, `{"id":1}`, "--metrics", "convert", "--from", "json", "--to", "yaml")
	require.NoError(t, res.err)

	out := metrics.String()
	assert.Contains(t, out, `serdex_process_started_total{format="yaml",operation="convert"} 1`)
	assert.Contains(t, out, `serdex_process_succeeded_total{format="yaml",operation="convert",status="success"} 1`)

	metrics.Reset()
	a = newApp()
	a.metricsTo = &metrics
	res = run(t, a, `[`, "--metrics", "convert", "--from", "json", "--to", "yaml")
	require.Error(t, res.err)
	assert.Contains(t, metrics.String(), `serdex_process_failed_total{format="yaml",operation="convert",status="error"} 1`)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serdex.yaml")
	require.NoError(t, serdex.SaveConfigFile(path, serdex.Config{FieldRename: serdex.Kebab}))

	a := newApp()
	res := run(t, a, "", "--config", path, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "user-name", serdex.CurrentNaming().ApplyField(true, "UserName"))

	res = run(t, newApp(), "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Error(t, res.err)
}

func TestConvert_ConfigFieldRename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serdex.yaml")
	require.NoError(t, serdex.SaveConfigFile(path, serdex.Config{FieldRename: serdex.Kebab}))

	res := run(t, newApp(), `{"user_name":1}`, "--config", path, "convert", "--from", "json", "--to", "json")
	require.NoError(t, res.err)
	assert.Equal(t, `{"user-name":1}`+"\n", res.stdout)

	res = run(t, newApp(), `{"userName":1}`, "--config", path, "convert", "--from", "json", "--to", "json", "--field-rename", "snake")
	require.NoError(t, res.err)
	assert.Equal(t, `{"user_name":1}`+"\n", res.stdout)
}

func TestVet(t *testing.T) {
	dir := t.TempDir()
	clean := "package models\n\ntype User struct {\n\tID int `serde:\"id\"`\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.go"), []byte(clean), 0o644))

	res := run(t, newApp(), "", "vet", dir)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	broken := "package models\n\ntype Order struct {\n\tID int `serde:\"id,bogus\"`\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.go"), []byte(broken), 0o644))

	res = run(t, newApp(), "", "vet", dir)
	require.Error(t, res.err)
	assert.Equal(t, "found 1 serde tag problem(s)", res.err.Error())
	assert.Contains(t, res.stdout, "field 'Order.ID': 'bogus': unknown attribute 'bogus'")

	res = run(t, newApp(), "", "vet", filepath.Join(dir, "nope.go"))
	assert.Error(t, res.err)
}
