package runner

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/mcp-base/mcp-acceptor/plugin"
)

// ResolveOrder orders plugins so that for every declared edge P→Q (Q named in
// P's hard dependencies or soft ordering), Q appears no later than P. The
// traversal is a depth-first post-order over the union of both edge kinds,
// visiting plugins in their input order, so the result is deterministic for a
// fixed input.
//
// An edge naming a plugin that is not in the input set is treated as
// satisfied and logged. Cycles terminate via the visited guard; members of a
// cycle keep a deterministic but non-topological relative order.
func ResolveOrder(plugins []plugin.Plugin, logger log.Logger) []plugin.Plugin {
	if logger == nil {
		logger = log.Root()
	}

	byName := make(map[string]plugin.Plugin, len(plugins))
	for _, p := range plugins {
		byName[p.Name()] = p
	}

	visited := make(map[string]bool, len(plugins))
	order := make([]plugin.Plugin, 0, len(plugins))

	var visit func(p plugin.Plugin)
	visit = func(p plugin.Plugin) {
		if visited[p.Name()] {
			return
		}
		visited[p.Name()] = true
		for _, dep := range dependencyEdges(p) {
			target, ok := byName[dep]
			if !ok {
				logger.Warn("Plugin declares a dependency on an unknown plugin; treating as satisfied",
					"plugin", p.Name(), "dependency", dep)
				continue
			}
			visit(target)
		}
		order = append(order, p)
	}

	for _, p := range plugins {
		visit(p)
	}
	return order
}

// dependencyEdges returns the union of a plugin's hard and soft edges,
// preserving declaration order and dropping duplicates.
func dependencyEdges(p plugin.Plugin) []string {
	hard := p.HardDeps()
	soft := p.SoftOrder()
	edges := make([]string, 0, len(hard)+len(soft))
	seen := make(map[string]bool, len(hard)+len(soft))
	for _, name := range hard {
		if !seen[name] {
			seen[name] = true
			edges = append(edges, name)
		}
	}
	for _, name := range soft {
		if !seen[name] {
			seen[name] = true
			edges = append(edges, name)
		}
	}
	return edges
}
