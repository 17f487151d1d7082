//go:build darwin || linux

package native

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ebitengine/purego"
)

// Library is an opened shared library with every export bound.
type Library struct {
	path   string
	handle uintptr
	fn     funcs
}

// Open loads the library at path and binds every export. Exports are looked
// up as prefix+name. All missing symbols are reported together.
func Open(path, prefix string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	lib := &Library{path: path, handle: handle}

	var missing []string
	for name, target := range lib.fn.targets() {
		sym, err := purego.Dlsym(handle, prefix+name)
		if err != nil {
			missing = append(missing, prefix+name)
			continue
		}
		purego.RegisterFunc(target, sym)
	}
	if len(missing) > 0 {
		_ = purego.Dlclose(handle)
		sort.Strings(missing)
		return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingSymbols, strings.Join(missing, ", "))
	}

	return lib, nil
}

// Close releases the library handle. The Library must not be used afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("close %s: %w", l.path, err)
	}
	return nil
}
