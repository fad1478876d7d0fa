package tree

// DefaultMaxDepth is the number of directory levels materialized when no limit is given.
const DefaultMaxDepth = 10

// DefaultRootLabel names the synthetic root created for records without relative paths.
const DefaultRootLabel = "dropped files"

// DefaultExcludeFolders lists the folder names skipped by default.
var DefaultExcludeFolders = []string{"node_modules", ".git", ".next", "dist", "build"}

// Options configures a single Build call. The zero value is not usable; start from
// DefaultOptions and override fields.
type Options struct {
	MaxDepth       int
	ExcludeFolders []string
	RootLabel      string
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		MaxDepth:       DefaultMaxDepth,
		ExcludeFolders: append([]string(nil), DefaultExcludeFolders...),
		RootLabel:      DefaultRootLabel,
	}
}

// normalized fills zero fields with defaults and copies the exclude list so the
// caller's slice is never shared with a running build.
func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.ExcludeFolders == nil {
		o.ExcludeFolders = DefaultExcludeFolders
	}
	o.ExcludeFolders = append([]string(nil), o.ExcludeFolders...)
	if o.RootLabel == "" {
		o.RootLabel = DefaultRootLabel
	}
	return o
}

func (o Options) excluded(name string) bool {
	for _, e := range o.ExcludeFolders {
		if e == name {
			return true
		}
	}
	return false
}
