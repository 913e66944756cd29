package attr

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/hengadev/serdex/internal/backend"
	"github.com/hengadev/serdex/internal/naming"
	"github.com/hengadev/serdex/internal/serdeerr"
)

type enumEntry struct {
	value int64
	name  string
}

type enumTable struct {
	entries []enumEntry
}

func (t *enumTable) name(v int64) (string, bool) {
	for _, e := range t.entries {
		if e.value == v {
			return e.name, true
		}
	}
	return "", false
}

var (
	enumsMu sync.RWMutex
	enums   = make(map[reflect.Type]*enumTable)
)

// RegisterEnum records the declared names of an integer-backed enum type.
// Unsigned values are stored bit-for-bit as int64.
func RegisterEnum(t reflect.Type, names map[int64]string) error {
	if !isIntegerKind(t.Kind()) {
		return serdeerr.NewUnsupportedTypeError(t.String(), "enum types must have an integer underlying type")
	}
	table := &enumTable{entries: make([]enumEntry, 0, len(names))}
	for v, n := range names {
		table.entries = append(table.entries, enumEntry{value: v, name: n})
	}
	slices.SortFunc(table.entries, func(a, b enumEntry) int {
		switch {
		case a.value < b.value:
			return -1
		case a.value > b.value:
			return 1
		}
		return 0
	})

	enumsMu.Lock()
	enums[t] = table
	enumsMu.Unlock()
	return nil
}

func lookupEnum(t reflect.Type) (*enumTable, bool) {
	enumsMu.RLock()
	defer enumsMu.RUnlock()
	table, ok := enums[t]
	return table, ok
}

// EnumString writes an enum as its (policy-mapped) name. Integer switches the
// field back to the numeric encoding.
type EnumString struct {
	// Policy overrides the global enum rename when set.
	Policy  naming.Policy
	Integer bool
}

func (EnumString) AttributeName() string { return NameEnumString }

func (a EnumString) tagString() string {
	switch {
	case a.Integer:
		return NameEnumString + "=int"
	case a.Policy != "":
		return NameEnumString + "=" + string(a.Policy)
	default:
		return NameEnumString
	}
}

func (a EnumString) SerializeField(ctx SerializeFieldContext, next func(SerializeFieldContext) error) error {
	if a.Integer {
		return next(ctx)
	}
	text, err := a.encode(ctx.Field, ctx.Value, ctx.Engine.Naming())
	if err != nil {
		return err
	}
	s, err := ctx.Writer.Field(ctx.Name)
	if err != nil {
		return err
	}
	return s.SerializeStr(text)
}

func (a EnumString) ConsumeField(ctx ConsumeContext, next func(ConsumeContext) error) error {
	if a.Integer {
		return next(ctx)
	}
	return a.decode(ctx.Field, ctx.Deserializer, ctx.Value, ctx.Engine.Naming())
}

func (a EnumString) SerializeValue(ctx SerializeValueContext, next func(SerializeValueContext) error) error {
	if a.Integer {
		return next(ctx)
	}
	text, err := a.encode("<value>", ctx.Value, ctx.Engine.Naming())
	if err != nil {
		return err
	}
	return ctx.Serializer.SerializeStr(text)
}

func (a EnumString) DeserializeValue(ctx DeserializeValueContext, next func(DeserializeValueContext) error) error {
	if a.Integer {
		return next(ctx)
	}
	return a.decode("<value>", ctx.Deserializer, ctx.Value, ctx.Engine.Naming())
}

func (a EnumString) mapName(cfg naming.Config, name string) string {
	if a.Policy != "" {
		return a.Policy.Apply(true, name)
	}
	if cfg.HasEnumRename() {
		return cfg.ApplyEnum(true, name)
	}
	return naming.LowerCamel.Apply(true, name)
}

func (a EnumString) table(field string, v reflect.Value) (*enumTable, error) {
	if !isIntegerKind(v.Kind()) {
		return nil, serdeerr.NewInvalidAttributeError(field, NameEnumString,
			fmt.Sprintf("type %s is not integer-backed", v.Type()))
	}
	table, ok := lookupEnum(v.Type())
	if !ok {
		return nil, serdeerr.NewInvalidAttributeError(field, NameEnumString,
			fmt.Sprintf("enum type %s is not registered", v.Type()))
	}
	return table, nil
}

func (a EnumString) encode(field string, v reflect.Value, cfg naming.Config) (string, error) {
	table, err := a.table(field, v)
	if err != nil {
		return "", err
	}
	raw := integerValue(v)
	name, ok := table.name(raw)
	if !ok {
		return "", serdeerr.NewNotRepresentableError(field, v.Type().String(), serdeerr.Serialize,
			"no name registered for value "+strconv.FormatInt(raw, 10))
	}
	return a.mapName(cfg, name), nil
}

// decode sets the zero value for names it does not know.
func (a EnumString) decode(field string, d backend.Deserializer, v reflect.Value, cfg naming.Config) error {
	table, err := a.table(field, v)
	if err != nil {
		return err
	}
	text, err := d.DeserializeStr()
	if err != nil {
		return err
	}
	for _, e := range table.entries {
		if a.mapName(cfg, e.name) == text || e.name == text {
			setIntegerValue(v, e.value)
			return nil
		}
	}
	v.SetZero()
	return nil
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func integerValue(v reflect.Value) int64 {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(v.Uint())
	default:
		return v.Int()
	}
}

func setIntegerValue(v reflect.Value, x int64) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v.SetUint(uint64(x))
	default:
		v.SetInt(x)
	}
}
