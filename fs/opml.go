package fs

import (
	"io"

	"github.com/beevik/etree"
	looptomd "github.com/reggroux/loop-to-markdown"
)

// WriteOPML renders a manifest as an OPML 2.0 outline, one top-level outline
// per workspace with page outlines nested per the discovered hierarchy.
// Outliner tools import the result directly.
func WriteOPML(w io.Writer, m *looptomd.Manifest) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	opml := doc.CreateElement("opml")
	opml.CreateAttr("version", "2.0")

	head := opml.CreateElement("head")
	head.CreateElement("title").SetText("Workspace outline")
	head.CreateElement("dateCreated").SetText(m.GeneratedAt.Format("Mon, 02 Jan 2006 15:04:05 MST"))

	body := opml.CreateElement("body")
	for _, ws := range m.Workspaces {
		node := body.CreateElement("outline")
		node.CreateAttr("text", ws.Title)
		if ws.URL != nil && *ws.URL != "" {
			node.CreateAttr("htmlUrl", *ws.URL)
		}
		appendPageOutlines(node, ws)
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

// appendPageOutlines nests the workspace's page forest under parent.
func appendPageOutlines(parent *etree.Element, ws *looptomd.Workspace) {
	index := ws.PageIndex()

	var appendPage func(container *etree.Element, page *looptomd.Page)
	appendPage = func(container *etree.Element, page *looptomd.Page) {
		node := container.CreateElement("outline")
		node.CreateAttr("text", page.Title)
		if page.URL != nil && *page.URL != "" {
			node.CreateAttr("htmlUrl", *page.URL)
		}
		for _, childID := range page.ChildIDs {
			if child, ok := index[childID]; ok {
				appendPage(node, child)
			}
		}
	}

	for _, page := range ws.Pages {
		if page.ParentID == nil {
			appendPage(parent, page)
		}
	}
}
