package shape

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	sumsMu sync.RWMutex
	sums   = make(map[reflect.Type][]reflect.Type)
)

// RegisterSum declares the alternatives of the interface type iface, in the
// order they are tried when decoding.
func RegisterSum(iface reflect.Type, alternatives ...reflect.Type) error {
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("sum type must be an interface, got %s", iface)
	}
	if len(alternatives) == 0 {
		return fmt.Errorf("sum type %s needs at least one alternative", iface)
	}
	for _, alt := range alternatives {
		if alt.Kind() == reflect.Interface {
			return fmt.Errorf("alternative %s of %s must be a concrete type", alt, iface)
		}
		if !alt.Implements(iface) {
			return fmt.Errorf("alternative %s does not implement %s", alt, iface)
		}
	}

	sumsMu.Lock()
	sums[iface] = append([]reflect.Type(nil), alternatives...)
	sumsMu.Unlock()
	forget(iface)
	return nil
}

// Alternatives returns the registered alternatives of iface.
func Alternatives(iface reflect.Type) ([]reflect.Type, bool) {
	sumsMu.RLock()
	defer sumsMu.RUnlock()
	alts, ok := sums[iface]
	return alts, ok
}
