package query

import (
	"fmt"
	"strings"
)

// Key identifies a cache entry: a resource name and an optional qualifier,
// such as ("regions", "") for the collection or ("regions", "7") for one
// region.
type Key struct {
	Resource  string
	Qualifier string
}

// K builds a Key from a resource name and optional qualifier parts.
func K(resource string, qualifier ...any) Key {
	if len(qualifier) == 0 {
		return Key{Resource: resource}
	}
	parts := make([]string, len(qualifier))
	for i, q := range qualifier {
		parts[i] = fmt.Sprint(q)
	}
	return Key{Resource: resource, Qualifier: strings.Join(parts, "/")}
}

func (k Key) String() string {
	if k.Qualifier == "" {
		return k.Resource
	}
	return k.Resource + "/" + k.Qualifier
}
