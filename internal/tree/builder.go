package tree

// Stats summarizes what a build did with its input records.
type Stats struct {
	Records      int `json:"records"`
	Files        int `json:"files"`
	Excluded     int `json:"excluded"`
	DepthLimited int `json:"depthLimited"`
	Conflicts    int `json:"conflicts"`
}

// Skipped is the number of records that did not produce a file node.
func (s Stats) Skipped() int {
	return s.Records - s.Files
}

type builder struct {
	opts  Options
	roots []*Node
	loose *Node // synthetic root, kept apart from real folders of the same name
	stats Stats
}

// Build converts flat records into an ordered forest of directory and file nodes.
func Build(records []Record, opts Options) []*Node {
	forest, _ := BuildWithStats(records, opts)
	return forest
}

// BuildWithStats is Build plus a summary of skipped records.
//
// Children keep the order in which records first mention them. When no record carries a
// relative path, every record becomes a file under a single synthetic root named
// opts.RootLabel.
func BuildWithStats(records []Record, opts Options) ([]*Node, Stats) {
	b := &builder{opts: opts.normalized()}
	if len(records) == 0 {
		return nil, b.stats
	}

	if !hasRelativePath(records) {
		for _, r := range records {
			b.stats.Records++
			b.addLoose(r, r.Name)
		}
		return b.roots, b.stats
	}

	for _, r := range records {
		b.stats.Records++
		b.add(r)
	}
	return b.roots, b.stats
}

func hasRelativePath(records []Record) bool {
	for _, r := range records {
		if r.RelativePath != "" {
			return true
		}
	}
	return false
}

func (b *builder) root(name string) *Node {
	for _, n := range b.roots {
		if n != b.loose && n.Name == name {
			return n
		}
	}
	return nil
}

func (b *builder) rootOrCreate(name string) *Node {
	if n := b.root(name); n != nil {
		return n
	}
	n := newDir(name, "")
	b.roots = append(b.roots, n)
	return n
}

// addLoose attaches a record without directory segments under the synthetic root.
func (b *builder) addLoose(r Record, name string) {
	if name == "" {
		b.stats.Conflicts++
		return
	}
	if b.loose == nil {
		b.loose = newDir(b.opts.RootLabel, "")
		b.roots = append(b.roots, b.loose)
	}
	parent := b.loose
	if parent.child(name) != nil {
		b.stats.Conflicts++
		return
	}
	parent.Children = append(parent.Children, newFile(r, name, parent.Path))
	b.stats.Files++
}

func (b *builder) add(r Record) {
	segs := r.segments()
	if len(segs) < 2 {
		name := r.Name
		if name == "" && len(segs) == 1 {
			name = segs[0]
		}
		b.addLoose(r, name)
		return
	}

	dirs, leaf := segs[:len(segs)-1], segs[len(segs)-1]
	for _, d := range dirs {
		if b.opts.excluded(d) {
			b.stats.Excluded++
			return
		}
	}

	truncated := false
	if len(dirs) >= b.opts.MaxDepth {
		dirs = dirs[:b.opts.MaxDepth]
		truncated = true
	}

	if b.conflicts(dirs, leaf, truncated) {
		b.stats.Conflicts++
		return
	}

	cur := b.rootOrCreate(dirs[0])
	for _, d := range dirs[1:] {
		next := cur.child(d)
		if next == nil {
			next = newDir(d, cur.Path)
			cur.Children = append(cur.Children, next)
		}
		cur = next
	}

	if truncated {
		b.stats.DepthLimited++
		return
	}
	cur.Children = append(cur.Children, newFile(r, leaf, cur.Path))
	b.stats.Files++
}

// conflicts walks the existing nodes along dirs without creating anything and reports
// whether a directory segment lands on a file, or the leaf name is already taken.
func (b *builder) conflicts(dirs []string, leaf string, truncated bool) bool {
	cur := b.root(dirs[0])
	for _, d := range dirs[1:] {
		if cur == nil {
			return false
		}
		cur = cur.child(d)
		if cur != nil && !cur.IsDir() {
			return true
		}
	}
	return !truncated && cur != nil && cur.child(leaf) != nil
}
