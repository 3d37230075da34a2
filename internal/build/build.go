package build

import "fmt"

// Info is set by main from linker flags.
type Info struct {
	Version string
	Commit  string
	Date    string
}

type Key struct{}

var InfoKey = Key{}

func (i *Info) String() string {
	if i == nil {
		return "dev"
	}
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
