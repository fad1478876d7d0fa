package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func contains(forest []*Node, name string) bool {
	for _, n := range forest {
		if n.Name == name || contains(n.Children, name) {
			return true
		}
	}
	return false
}

func TestBuild_NestedPaths(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "a.txt", RelativePath: "proj/a.txt", Size: 3, LastModified: 1700000000000},
		{Name: "b.txt", RelativePath: "proj/sub/b.txt", Size: 5},
	}

	forest := Build(records, DefaultOptions())
	r.Len(forest, 1)

	root := forest[0]
	r.Equal("proj", root.Name)
	r.Equal(Directory, root.Kind)
	r.Equal([]string{"a.txt", "sub"}, names(root.Children))

	a := root.Children[0]
	r.Equal(File, a.Kind)
	r.Nil(a.Children)
	r.EqualValues(3, *a.Size)
	r.EqualValues(1700000000000, *a.LastModified)
	r.Equal("proj/a.txt", a.Path)

	sub := root.Children[1]
	r.Equal(Directory, sub.Kind)
	r.Equal([]string{"b.txt"}, names(sub.Children))
	r.Equal("proj/sub/b.txt", sub.Children[0].Path)
}

func TestBuild_LooseFiles(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "x.txt", Size: 1},
		{Name: "y.txt", Size: 2},
	}

	forest := Build(records, DefaultOptions())
	r.Len(forest, 1)
	r.Equal("dropped files", forest[0].Name)
	r.Equal(Directory, forest[0].Kind)
	r.Equal([]string{"x.txt", "y.txt"}, names(forest[0].Children))
	r.Equal("dropped files/y.txt", forest[0].Children[1].Path)
}

func TestBuild_CustomRootLabel(t *testing.T) {
	opts := DefaultOptions()
	opts.RootLabel = "拖拽文件"

	forest := Build([]Record{{Name: "x.txt"}}, opts)
	require.Equal(t, "拖拽文件", forest[0].Name)
}

func TestBuild_Empty(t *testing.T) {
	forest, stats := BuildWithStats(nil, DefaultOptions())
	require.Empty(t, forest)
	require.Zero(t, stats.Records)
}

func TestBuild_CommonFirstSegment(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "main.go", RelativePath: "app/main.go"},
		{Name: "go.mod", RelativePath: "app/go.mod"},
		{Name: "x.go", RelativePath: "app/internal/x/x.go"},
		{Name: "y.go", RelativePath: "app/internal/y.go"},
	}

	forest := Build(records, DefaultOptions())
	r.Len(forest, 1)
	r.Equal("app", forest[0].Name)
	r.Equal([]string{"main.go", "go.mod", "internal"}, names(forest[0].Children))
	r.Equal([]string{"x", "y.go"}, names(forest[0].Children[2].Children))
}

func TestBuild_MultipleRoots(t *testing.T) {
	records := []Record{
		{Name: "a", RelativePath: "one/a"},
		{Name: "b", RelativePath: "two/b"},
		{Name: "c", RelativePath: "one/c"},
	}

	forest := Build(records, DefaultOptions())
	require.Equal(t, []string{"one", "two"}, names(forest))
	require.Equal(t, []string{"a", "c"}, names(forest[0].Children))
}

func TestBuild_ExcludedFolders(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "index.js", RelativePath: "web/index.js"},
		{Name: "react.js", RelativePath: "web/node_modules/react/react.js"},
		{Name: "HEAD", RelativePath: "web/.git/HEAD"},
		{Name: "out.js", RelativePath: "web/lib/dist/out.js"},
		{Name: "app.js", RelativePath: "web/lib/app.js"},
		{Name: "x", RelativePath: "build/x"},
	}

	forest, stats := BuildWithStats(records, DefaultOptions())
	r.Equal([]string{"web"}, names(forest))
	r.Equal([]string{"index.js", "lib"}, names(forest[0].Children))
	r.Equal([]string{"app.js"}, names(forest[0].Children[1].Children))
	for _, excluded := range DefaultExcludeFolders {
		r.False(contains(forest, excluded), "excluded folder %s present", excluded)
	}
	r.Equal(4, stats.Excluded)
	r.Equal(2, stats.Files)
}

func TestBuild_ExcludedFolderLeavesNoShells(t *testing.T) {
	records := []Record{
		{Name: "a.js", RelativePath: "p/deep/er/node_modules/a.js"},
	}

	forest := Build(records, DefaultOptions())
	require.Empty(t, forest)
}

func TestBuild_CustomExcludes(t *testing.T) {
	opts := DefaultOptions()
	opts.ExcludeFolders = []string{"vendor"}

	forest := Build([]Record{
		{Name: "m.go", RelativePath: "p/vendor/m.go"},
		{Name: "HEAD", RelativePath: "p/.git/HEAD"},
	}, opts)
	require.False(t, contains(forest, "vendor"))
	require.True(t, contains(forest, ".git"))
}

func TestBuild_MaxDepth(t *testing.T) {
	r := require.New(t)
	opts := DefaultOptions()
	opts.MaxDepth = 2

	records := []Record{
		{Name: "top.txt", RelativePath: "r/top.txt"},
		{Name: "mid.txt", RelativePath: "r/a/mid.txt"},
		{Name: "deep.txt", RelativePath: "r/a/b/deep.txt"},
	}

	forest, stats := BuildWithStats(records, opts)
	r.Equal([]string{"top.txt", "a"}, names(forest[0].Children))
	// r/a is at depth 2, so nothing is attached inside it
	r.Empty(forest[0].Children[1].Children)
	r.Equal(2, stats.DepthLimited)
	r.LessOrEqual(MaxDepth(forest), opts.MaxDepth)
}

func TestBuild_MaxDepthNeverExceeded(t *testing.T) {
	records := []Record{
		{Name: "f", RelativePath: "1/2/3/4/5/6/7/8/9/10/11/12/f"},
		{Name: "g", RelativePath: "1/2/3/g"},
	}
	for depth := 1; depth <= 13; depth++ {
		opts := DefaultOptions()
		opts.MaxDepth = depth
		forest := Build(records, opts)
		require.LessOrEqual(t, MaxDepth(forest), depth, "maxDepth %d", depth)
	}
}

func TestBuild_DefaultDepthKeepsNineLevels(t *testing.T) {
	forest := Build([]Record{
		{Name: "f", RelativePath: "1/2/3/4/5/6/7/8/9/f"},
		{Name: "g", RelativePath: "1/2/3/4/5/6/7/8/9/10/g"},
	}, DefaultOptions())

	require.NotNil(t, Find(forest, "1/2/3/4/5/6/7/8/9/f"))
	require.Nil(t, Find(forest, "1/2/3/4/5/6/7/8/9/10/g"))
	require.NotNil(t, Find(forest, "1/2/3/4/5/6/7/8/9/10"))
}

func TestBuild_DeduplicatesByName(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "a", RelativePath: "p/a", Size: 1},
		{Name: "a", RelativePath: "p/a", Size: 2},
		{Name: "x", RelativePath: "p/a/x"},
	}

	forest, stats := BuildWithStats(records, DefaultOptions())
	r.Len(forest[0].Children, 1)
	r.EqualValues(1, *forest[0].Children[0].Size)
	r.Equal(2, stats.Conflicts)
}

func TestBuild_EmptySegments(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "b.txt", RelativePath: "a//b.txt"},
		{Name: "c.txt", RelativePath: "/a/c.txt"},
		{Name: "d.txt", RelativePath: "/"},
	}

	forest := Build(records, DefaultOptions())
	r.Equal([]string{"a", "dropped files"}, names(forest))
	r.Equal([]string{"b.txt", "c.txt"}, names(forest[0].Children))
	r.Equal([]string{"d.txt"}, names(forest[1].Children))
}

func TestBuild_MixedLooseAndNested(t *testing.T) {
	records := []Record{
		{Name: "loose.txt"},
		{Name: "a.txt", RelativePath: "proj/a.txt"},
	}

	forest := Build(records, DefaultOptions())
	require.Equal(t, []string{"dropped files", "proj"}, names(forest))
}

func TestBuild_LooseFilesStayOutOfSameNamedFolder(t *testing.T) {
	r := require.New(t)
	records := []Record{
		{Name: "x.txt", RelativePath: "dropped files/x.txt"},
		{Name: "y.txt"},
		{Name: "z.txt", RelativePath: "dropped files/z.txt"},
	}

	forest := Build(records, DefaultOptions())
	r.Len(forest, 2)
	r.Equal([]string{"x.txt", "z.txt"}, names(forest[0].Children))
	r.Equal([]string{"y.txt"}, names(forest[1].Children))
}

func TestBuild_EmptyExcludeListKeepsEverything(t *testing.T) {
	opts := DefaultOptions()
	opts.ExcludeFolders = []string{}

	forest := Build([]Record{{Name: "a.js", RelativePath: "p/node_modules/a.js"}}, opts)
	require.True(t, contains(forest, "node_modules"))
}

func TestBuild_ZeroOptionsUseDefaults(t *testing.T) {
	forest := Build([]Record{
		{Name: "a.js", RelativePath: "p/node_modules/a.js"},
		{Name: "b.js", RelativePath: "p/b.js"},
	}, Options{})
	require.False(t, contains(forest, "node_modules"))
	require.True(t, contains(forest, "b.js"))
}

func TestBuild_Deterministic(t *testing.T) {
	records := []Record{
		{Name: "z", RelativePath: "r/z"},
		{Name: "a", RelativePath: "r/d/a"},
		{Name: "m", RelativePath: "r/m"},
	}

	first := Format(Build(records, DefaultOptions()), nil)
	second := Format(Build(records, DefaultOptions()), nil)
	require.Equal(t, first, second)
}
