package callgraph

// RemoveFile excises every definition, call site, and variable binding that
// belongs to path, then compacts all adjacency lists so no tombstoned
// CallIdx survives in incoming/outgoing. It is idempotent: calling it for a
// path that was never indexed, or calling it twice in a row, is a no-op the
// second time.
//
// This mirrors the original graph's five-step removal: resolve the
// PathRef, drop definitions (and their subscriber linkage), drop variable
// scopes, tombstone call sites, compact every adjacency vector, then drop
// the PathRef cache entry. Compaction runs over every QName's adjacency
// list, not just the removed file's own definitions, because a removed
// call site may be the target of incoming edges recorded under other
// files' QNames.
func (g *Graph) RemoveFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ref, ok := g.paths.Peek(path)
	if !ok {
		return
	}

	for _, q := range g.fileDefs[ref] {
		delete(g.defs, q)
		delete(g.incoming, q)
		delete(g.outgoing, q)
		delete(g.vars, q)
		g.removeSubscriberEntriesFor(q)
	}
	delete(g.fileDefs, ref)
	for _, scope := range g.fileVars[ref] {
		delete(g.vars, scope)
	}
	delete(g.fileVars, ref)

	for _, idx := range g.fileSites[ref] {
		if int(idx) < len(g.sites) {
			g.sites[idx] = nil
		}
	}
	delete(g.fileSites, ref)

	g.compactAdjacency(g.incoming)
	g.compactAdjacency(g.outgoing)

	g.paths.Drop(path)
}

func (g *Graph) removeSubscriberEntriesFor(q QName) {
	for key, qs := range g.subscribers {
		filtered := qs[:0]
		for _, existing := range qs {
			if existing != q {
				filtered = append(filtered, existing)
			}
		}
		if len(filtered) == 0 {
			delete(g.subscribers, key)
		} else {
			g.subscribers[key] = filtered
		}
	}
}

func (g *Graph) compactAdjacency(adj map[QName][]CallIdx) {
	for q, idxs := range adj {
		live := idxs[:0]
		for _, idx := range idxs {
			if int(idx) < len(g.sites) && g.sites[idx] != nil {
				live = append(live, idx)
			}
		}
		if len(live) == 0 {
			delete(adj, q)
		} else {
			adj[q] = live
		}
	}
}

