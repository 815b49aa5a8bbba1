package fs_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOPML_NestsPagesPerHierarchy(t *testing.T) {
	t.Parallel()

	projects := "projects"
	roadmap := "roadmap"
	url := "https://loop.example.com/p/roadmap"

	m := &looptomd.Manifest{
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Workspaces: []*looptomd.Workspace{
			{
				ID:    "team-alpha",
				Title: "Team Alpha",
				Pages: []*looptomd.Page{
					{ID: "projects", Title: "Projects", Depth: 0, ChildIDs: []string{"roadmap"}},
					{ID: "roadmap", Title: "Roadmap", Depth: 1, ParentID: &projects, URL: &url, ChildIDs: []string{"q3"}},
					{ID: "q3", Title: "Q3", Depth: 2, ParentID: &roadmap},
					{ID: "archive", Title: "Archive", Depth: 0},
				},
			},
		},
	}
	m.Recount()

	var sb strings.Builder
	require.NoError(t, fs.WriteOPML(&sb, m))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(sb.String()))

	root := doc.SelectElement("opml")
	require.NotNil(t, root)
	assert.Equal(t, "2.0", root.SelectAttrValue("version", ""))

	body := root.SelectElement("body")
	require.NotNil(t, body)

	wsNodes := body.SelectElements("outline")
	require.Len(t, wsNodes, 1)
	assert.Equal(t, "Team Alpha", wsNodes[0].SelectAttrValue("text", ""))

	// Two roots under the workspace: Projects and Archive
	roots := wsNodes[0].SelectElements("outline")
	require.Len(t, roots, 2)
	assert.Equal(t, "Projects", roots[0].SelectAttrValue("text", ""))
	assert.Equal(t, "Archive", roots[1].SelectAttrValue("text", ""))

	// Roadmap nests under Projects and carries its location
	children := roots[0].SelectElements("outline")
	require.Len(t, children, 1)
	assert.Equal(t, "Roadmap", children[0].SelectAttrValue("text", ""))
	assert.Equal(t, url, children[0].SelectAttrValue("htmlUrl", ""))

	grandchildren := children[0].SelectElements("outline")
	require.Len(t, grandchildren, 1)
	assert.Equal(t, "Q3", grandchildren[0].SelectAttrValue("text", ""))
}

func TestWriteOPML_EmptyManifest(t *testing.T) {
	t.Parallel()

	m := &looptomd.Manifest{
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Workspaces:  []*looptomd.Workspace{},
	}

	var sb strings.Builder
	require.NoError(t, fs.WriteOPML(&sb, m))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(sb.String()))
	body := doc.SelectElement("opml").SelectElement("body")
	require.NotNil(t, body)
	assert.Empty(t, body.SelectElements("outline"))
}
