package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Page is a CMS page. Lft, Rght, TreeID and Level are nested-set columns
// kept in sync by RebuildTree.
type Page struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	ParentID     uuid.NullUUID `json:"parent_id" db:"parent_id"`
	Title        string        `json:"title" db:"title"`
	Slug         string        `json:"slug" db:"slug"`
	URL          string        `json:"url" db:"url"`
	Content      string        `json:"content" db:"content"`
	IsPublic     bool          `json:"is_public" db:"is_public"`
	InNavigation bool          `json:"in_navigation" db:"in_navigation"`
	Order        int           `json:"order" db:"sort_order"`
	Lft          int           `json:"-" db:"lft"`
	Rght         int           `json:"-" db:"rght"`
	TreeID       int           `json:"-" db:"tree_id"`
	Level        int           `json:"level" db:"level"`
	Created      time.Time     `json:"created" db:"created"`
	Updated      time.Time     `json:"updated" db:"updated"`
}

// NewPage validates and creates a page. Slug defaults to the slugified title.
func NewPage(parentID uuid.NullUUID, title, slug, content string, isPublic, inNavigation bool, order int, now time.Time) (*Page, error) {
	p := &Page{
		ID:           uuid.New(),
		ParentID:     parentID,
		Title:        strings.TrimSpace(title),
		Slug:         Slugify(slug),
		Content:      content,
		IsPublic:     isPublic,
		InNavigation: inNavigation,
		Order:        order,
		Created:      now.UTC(),
		Updated:      now.UTC(),
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the editable fields of a page.
func (p *Page) Validate() error {
	if p.Title == "" {
		return NewValidationError("title", "is required", nil)
	}
	if p.Slug == "" {
		return NewValidationError("slug", "is required", nil)
	}
	return nil
}

// IsDescendantOf reports whether p lies strictly below ancestor.
func (p *Page) IsDescendantOf(ancestor *Page) bool {
	return p.TreeID == ancestor.TreeID && p.Lft > ancestor.Lft && p.Rght < ancestor.Rght
}

// RebuildTree recomputes URL and the nested-set columns of every page.
// Siblings are numbered by Order then Title; each root starts a new tree.
// It returns ErrInvalidMove if the parent links contain a cycle.
func RebuildTree(pages []*Page) error {
	children := make(map[uuid.UUID][]*Page)
	byID := make(map[uuid.UUID]*Page, len(pages))
	var roots []*Page
	for _, p := range pages {
		byID[p.ID] = p
	}
	for _, p := range pages {
		if p.ParentID.Valid {
			if _, ok := byID[p.ParentID.UUID]; ok {
				children[p.ParentID.UUID] = append(children[p.ParentID.UUID], p)
				continue
			}
		}
		roots = append(roots, p)
	}

	sortPages(roots)
	visited := 0
	var walk func(p *Page, prefix string, tree, level int, counter *int)
	walk = func(p *Page, prefix string, tree, level int, counter *int) {
		visited++
		p.URL = prefix + p.Slug + "/"
		p.TreeID = tree
		p.Level = level
		*counter++
		p.Lft = *counter
		kids := children[p.ID]
		sortPages(kids)
		for _, c := range kids {
			walk(c, p.URL, tree, level+1, counter)
		}
		*counter++
		p.Rght = *counter
	}
	for i, r := range roots {
		counter := 0
		walk(r, "/", i+1, 0, &counter)
	}

	// Pages in a cycle are unreachable from any root.
	if visited != len(pages) {
		return ErrInvalidMove
	}
	return nil
}

func sortPages(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Order != pages[j].Order {
			return pages[i].Order < pages[j].Order
		}
		return pages[i].Title < pages[j].Title
	})
}

// NavItem is a page in the navigation tree.
type NavItem struct {
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Children []*NavItem `json:"children,omitempty"`
}

// BuildNavigation returns the public, in-navigation pages as a nested tree.
// Pages must be ordered by tree then lft. A hidden page hides its subtree.
func BuildNavigation(pages []*Page) []*NavItem {
	items := make(map[uuid.UUID]*NavItem)
	var roots []*NavItem
	for _, p := range pages {
		if !p.IsPublic || !p.InNavigation {
			continue
		}
		item := &NavItem{Title: p.Title, URL: p.URL}
		if !p.ParentID.Valid {
			roots = append(roots, item)
			items[p.ID] = item
			continue
		}
		parent, ok := items[p.ParentID.UUID]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, item)
		items[p.ID] = item
	}
	return roots
}

// NormalizePagePath turns "about/team" into "/about/team/".
func NormalizePagePath(path string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return "/"
	}
	return "/" + path + "/"
}
