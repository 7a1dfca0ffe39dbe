package boxtree

import (
	tp "github.com/xlab/treeprint"
)

// Dump returns a printable representation of a box tree, one box per line.
func Dump(root *Box) string {
	if root == nil {
		return "<empty box tree>\n"
	}
	p := tp.New()
	p.SetValue(root.String())
	for _, c := range root.Children {
		dumpBox(p, c)
	}
	return p.String()
}

func dumpBox(p tp.Tree, b *Box) {
	if len(b.Children) == 0 {
		p.AddNode(b.String())
		return
	}
	branch := p.AddBranch(b.String())
	for _, c := range b.Children {
		dumpBox(branch, c)
	}
}
