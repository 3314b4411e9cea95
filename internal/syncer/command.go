package syncer

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// quoteRemotePath leaves a leading "~/" unquoted so the remote shell still
// expands it.
func quoteRemotePath(p string) string {
	if rest, ok := strings.CutPrefix(p, "~/"); ok && rest != "" {
		return "~/" + shellquote.Join(rest)
	}
	return shellquote.Join(p)
}
