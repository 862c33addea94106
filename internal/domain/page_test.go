package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPage(t *testing.T, parent *Page, title string, order int) *Page {
	t.Helper()
	var parentID uuid.NullUUID
	if parent != nil {
		parentID = uuid.NullUUID{UUID: parent.ID, Valid: true}
	}
	p, err := NewPage(parentID, title, "", "", true, true, order, time.Now())
	require.NoError(t, err)
	return p
}

func TestRebuildTree(t *testing.T) {
	t.Parallel()

	about := newTestPage(t, nil, "About", 1)
	help := newTestPage(t, nil, "Help", 0)
	team := newTestPage(t, about, "Our Team", 2)
	history := newTestPage(t, about, "History", 1)
	faq := newTestPage(t, help, "FAQ", 0)

	pages := []*Page{about, team, help, faq, history}
	require.NoError(t, RebuildTree(pages))

	assert.Equal(t, "/about/", about.URL)
	assert.Equal(t, "/about/our-team/", team.URL)
	assert.Equal(t, "/help/faq/", faq.URL)

	// help has the lower order so it forms the first tree.
	assert.Equal(t, 1, help.TreeID)
	assert.Equal(t, 2, about.TreeID)

	assert.Equal(t, []int{1, 6}, []int{about.Lft, about.Rght})
	assert.Equal(t, []int{2, 3}, []int{history.Lft, history.Rght})
	assert.Equal(t, []int{4, 5}, []int{team.Lft, team.Rght})
	assert.Equal(t, 1, team.Level)

	assert.True(t, team.IsDescendantOf(about))
	assert.False(t, about.IsDescendantOf(team))
	assert.False(t, faq.IsDescendantOf(about))
}

func TestRebuildTreeDetectsCycle(t *testing.T) {
	t.Parallel()

	a := newTestPage(t, nil, "A", 0)
	b := newTestPage(t, a, "B", 0)
	a.ParentID = uuid.NullUUID{UUID: b.ID, Valid: true}

	assert.ErrorIs(t, RebuildTree([]*Page{a, b}), ErrInvalidMove)
}

func TestBuildNavigation(t *testing.T) {
	t.Parallel()

	about := newTestPage(t, nil, "About", 0)
	team := newTestPage(t, about, "Team", 0)
	secret := newTestPage(t, about, "Secret", 1)
	secret.IsPublic = false
	child := newTestPage(t, secret, "Child", 0)
	pages := []*Page{about, team, secret, child}
	require.NoError(t, RebuildTree(pages))

	nav := BuildNavigation(pages)
	require.Len(t, nav, 1)
	assert.Equal(t, "/about/", nav[0].URL)
	require.Len(t, nav[0].Children, 1)
	assert.Equal(t, "Team", nav[0].Children[0].Title)
}

func TestNormalizePagePath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/", NormalizePagePath(""))
	assert.Equal(t, "/about/team/", NormalizePagePath("about/team"))
	assert.Equal(t, "/about/", NormalizePagePath("/about/"))
}
