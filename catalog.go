package serial

import (
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// FormatLoader builds, or returns the already built, inventory of a format.
type FormatLoader func() (Inventory, error)

var catalog = xsync.NewMap[string, FormatLoader]()

// RegisterFormat makes a format available by name. Format packages call it from init
// with a loader that builds the format on first use.
func RegisterFormat(name string, load FormatLoader) error {
	if load == nil {
		return fmt.Errorf("serial: nil loader for format %q", name)
	}
	if _, loaded := catalog.LoadOrStore(name, load); loaded {
		return fmt.Errorf("serial: format %q is already registered", name)
	}
	return nil
}

// LookupFormat returns the inventory of a registered format, building it if needed.
func LookupFormat(name string) (Inventory, error) {
	load, ok := catalog.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return load()
}

// Formats lists the registered format names in order.
func Formats() []string {
	names := make([]string, 0, catalog.Size())
	catalog.Range(func(name string, _ FormatLoader) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
