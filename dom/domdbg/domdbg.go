/*
Package domdbg implements helpers to debug a styled document.

Diagrams show the element and text nodes of a document together with
property groups of their computed styles. Computed styles share immutable
property groups, and a group shared by several nodes is drawn once, with
an edge from every node using it. Style sharing is therefore visible
at a glance.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>


*/
package domdbg

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"text/template"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/style"
)

// StyleOf returns the computed style of a node, or nil.
type StyleOf func(dom.NodeID) *style.ComputedStyle

// Parameters for GraphViz drawing.
type graphParams struct {
	Fontname       string
	NodeTmpl       *template.Template
	EdgeTmpl       *template.Template
	StylegroupTmpl *template.Template
	PgedgeTmpl     *template.Template
}

// DefaultGroups are the property groups drawn if a client does not select
// any.
var DefaultGroups = []style.GroupID{
	style.Margins,
	style.Padding,
	style.Border,
	style.Display,
}

// ToGraphViz outputs a diagram for a styled document in GraphViz (DOT)
// format. The diagram includes the property groups listed in groups, or
// DefaultGroups if groups is empty. Text nodes are drawn without styles.
//
// The caller must hold the document's read lock.
func ToGraphViz(w io.Writer, doc *dom.Document, styles StyleOf, groups []style.GroupID) error {
	if len(groups) == 0 {
		groups = DefaultGroups
	}
	head := template.Must(template.New("dom").Parse(graphHeadTmpl))
	g := &graphParams{Fontname: "Helvetica"}
	g.NodeTmpl = template.Must(template.New("domnode").Funcs(template.FuncMap{
		"shortstring": shortText,
	}).Parse(domNodeTmpl))
	g.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	g.StylegroupTmpl = template.Must(template.New("stylegroup").Parse(styleGroupTmpl))
	g.PgedgeTmpl = template.Must(template.New("pgedge").Parse(pgEdgeTmpl))
	if err := head.Execute(w, g); err != nil {
		return err
	}
	d := &drawing{w: w, doc: doc, styles: styles, groups: groups, params: g,
		drawn: make(map[*style.PropertyGroup]bool)}
	if err := d.nodes(doc.Root()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

type drawing struct {
	w      io.Writer
	doc    *dom.Document
	styles StyleOf
	groups []style.GroupID
	params *graphParams
	drawn  map[*style.PropertyGroup]bool
}

type node struct {
	Name  string
	Label string
	Text  bool
}

func nodeName(id dom.NodeID) string {
	return fmt.Sprintf("node%05d", id)
}

func (d *drawing) nodes(id dom.NodeID) error {
	if err := d.domNode(id); err != nil {
		return err
	}
	for _, c := range d.doc.Children(id) {
		if err := d.nodes(c); err != nil {
			return err
		}
		e := struct{ From, To string }{nodeName(id), nodeName(c)}
		if err := d.params.EdgeTmpl.Execute(d.w, e); err != nil {
			return err
		}
	}
	return nil
}

func (d *drawing) domNode(id dom.NodeID) error {
	n := node{Name: nodeName(id), Label: d.doc.Tag(id)}
	if n.Label == "" {
		n.Text = true
		n.Label, _ = d.doc.Text(id)
		return d.params.NodeTmpl.Execute(d.w, n)
	}
	if err := d.params.NodeTmpl.Execute(d.w, n); err != nil {
		return err
	}
	if d.styles == nil {
		return nil
	}
	cs := d.styles(id)
	for _, gid := range d.groups {
		pg := cs.Group(gid)
		if pg == nil {
			continue
		}
		if !d.drawn[pg] {
			d.drawn[pg] = true
			if err := d.params.StylegroupTmpl.Execute(d.w, pg); err != nil {
				return err
			}
		}
		e := struct {
			Name      string
			PropGroup *style.PropertyGroup
		}{n.Name, pg}
		if err := d.params.PgedgeTmpl.Execute(d.w, e); err != nil {
			return err
		}
	}
	return nil
}

// Dotty is a helper for testing. It writes a diagram of a styled document
// to a file in the current folder, choosing a unique file name, and
// renders it to SVG. The test is skipped if GraphViz is not installed.
//
// If an error occurs, t.Error(…) will be set, causing the test to fail.
func Dotty(t *testing.T, doc *dom.Document, styles StyleOf) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("GraphViz not installed")
	}
	tmpfile, err := os.CreateTemp(".", "dom.*.dot")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
	}()
	t.Logf("writing DOM digraph to %s\n", tmpfile.Name())
	if err := ToGraphViz(tmpfile, doc, styles, nil); err != nil {
		t.Error(err)
		return
	}
	cmd := exec.Command("dot", "-Tsvg", "-o"+tmpfile.Name()+".svg", tmpfile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	t.Logf("writing DOM tree image to %s.svg\n", tmpfile.Name())
	if err := cmd.Run(); err != nil {
		t.Error(err.Error())
	}
}

func shortText(s string) string {
	if r := []rune(s); len(r) > 10 {
		s = string(r[:10]) + "..."
	}
	s = fmt.Sprintf("%q", s)
	s = strings.ReplaceAll(s, " ", "␣")
	return s
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ if .Text }}
{{ .Name }}	[ label={{ shortstring .Label }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else }}
{{ .Name }}	[ label={{ printf "%q" .Label }} shape=ellipse style=filled fillcolor=lightblue3 ] ;
{{ end }}
`

const styleGroupTmpl = `{{ printf "pg%p" . }} [ style="filled" penwidth=1 fillcolor="ivory3" shape="Mrecord" fontsize=12
    label=<<table border="0" cellborder="0" cellpadding="2" cellspacing="0" bgcolor="ivory3">
      <tr><td bgcolor="azure4" align="center" colspan="2"><font color="white">{{ .Name }}</font></td></tr>
      {{ range .Properties }}
      <tr><td align="right">{{ .Key }}:</td><td>{{ .Value }}</td></tr>
      {{ else }}
      <tr><td colspan="2">no styles</td></tr>
      {{ end }}
    </table>> ] ;
`

const domEdgeTmpl = `{{ .From }} -> {{ .To }} [weight=1] ;
`

const pgEdgeTmpl = `{{ .Name }} -> {{ printf "pg%p" .PropGroup }} [dir=none weight=1 style="dashed"] ;
`
