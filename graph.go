package statemesh

// SourcesOf returns a cell's direct sources: its upstream connection,
// if any, followed by its aggregate inputs in order. Plain
// disconnected cells have none.
func SourcesOf(c AnyCell) []AnyCell {
	if c == nil {
		return nil
	}
	return c.directSources()
}

// DependsOn reports whether from reaches on by walking upstream and
// input edges. Iterative traversal with a visited set, so it
// terminates on cyclic graphs; DependsOn(c, c) reports whether c sits
// on a cycle. Useful for screening a wiring operation before it
// happens, since Get reports cycles only once they are recomputed
// through.
func DependsOn(from, on AnyCell) bool {
	if from == nil || on == nil {
		return false
	}

	visited := make(map[AnyCell]bool, 32)
	stack := make([]AnyCell, 0, 32)
	stack = append(stack, SourcesOf(from)...)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		if current == on {
			return true
		}

		for _, src := range SourcesOf(current) {
			if !visited[src] {
				stack = append(stack, src)
			}
		}
	}

	return false
}

func removeElement[T comparable](slice []T, item T) []T {
	for i, existing := range slice {
		if existing == item {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
