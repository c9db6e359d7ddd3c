// Package completions supplies cobra ValidArgsFunction completers for
// the [DISPLAY] positional shared by on/off/toggle/status: a small
// cache guarded by a mutex, populated on first completion and reused
// for every later completion served by the same process, so one
// process opens a backend connection at most once for completion.
package completions

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"dpms/internal/dpms"
)

// ListFunc enumerates the live display set. cmd supplies this as a
// closure over resolveBackend to avoid completions depending on the
// backend-selection policy directly.
type ListFunc func() ([]dpms.DisplayInfo, error)

type Completer struct {
	list ListFunc

	mu     sync.RWMutex
	cached []string
}

func NewCompleter(list ListFunc) *Completer {
	return &Completer{list: list}
}

// CompleteDisplayNames is a cobra ValidArgsFunction: it lists displays
// once per invocation the first time it runs (or whenever the cache is
// still empty), then serves every later completion in the same process
// from the cached name list.
func (c *Completer) CompleteDisplayNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	names := c.cachedNames()
	if names == nil {
		infos, err := c.list()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names = make([]string, len(infos))
		for i, d := range infos {
			names[i] = d.Name
		}
		c.mu.Lock()
		c.cached = names
		c.mu.Unlock()
	}

	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) cachedNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cached
}

func filterPrefix(items []string, prefix string) []string {
	var out []string
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			out = append(out, item)
		}
	}
	return out
}
