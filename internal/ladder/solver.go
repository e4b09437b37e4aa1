package ladder

// Neighbors returns every word reachable from w in one legal move for which
// known reports true. Candidates are built over the A–Z alphabet.
func Neighbors(w string, known func(string) bool) []string {
	base := []rune(Normalize(w))
	seen := make(map[string]struct{})
	var out []string
	add := func(r []rune) {
		s := string(r)
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		if known(s) {
			out = append(out, s)
		}
	}

	for i := range base {
		orig := base[i]
		for c := 'A'; c <= 'Z'; c++ {
			if c == orig {
				continue
			}
			base[i] = c
			add(base)
		}
		base[i] = orig
	}

	for i := 0; i < len(base); i++ {
		for j := i + 1; j < len(base); j++ {
			if base[i] == base[j] {
				continue
			}
			base[i], base[j] = base[j], base[i]
			add(base)
			base[i], base[j] = base[j], base[i]
		}
	}
	return out
}

// ShortestPath runs a breadth-first search from start to target over words
// accepted by known. It returns the full path including both ends, or nil
// when target is unreachable. start itself does not have to be known.
func ShortestPath(start, target string, known func(string) bool) []string {
	start, target = Normalize(start), Normalize(target)
	if len([]rune(start)) != len([]rune(target)) {
		return nil
	}
	if start == target {
		return []string{start}
	}

	prev := map[string]string{start: ""}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range Neighbors(cur, known) {
			if _, visited := prev[nb]; visited {
				continue
			}
			prev[nb] = cur
			if nb == target {
				return unwind(prev, target)
			}
			queue = append(queue, nb)
		}
	}
	return nil
}

func unwind(prev map[string]string, end string) []string {
	var rev []string
	for w := end; w != ""; w = prev[w] {
		rev = append(rev, w)
	}
	path := make([]string, len(rev))
	for i, w := range rev {
		path[len(rev)-1-i] = w
	}
	return path
}
