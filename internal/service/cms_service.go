package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// PageInput holds the fields of a new page.
type PageInput struct {
	ParentID     uuid.NullUUID
	Title        string
	Slug         string
	Content      string
	IsPublic     bool
	InNavigation bool
	Order        int
}

// PageUpdate holds the optional fields of a page change.
type PageUpdate struct {
	Title        *string
	Slug         *string
	Content      *string
	IsPublic     *bool
	InNavigation *bool
}

// PageView is a page with its position in the tree.
type PageView struct {
	Page        *domain.Page   `json:"page"`
	Breadcrumbs []*domain.Page `json:"breadcrumbs"`
	Children    []*domain.Page `json:"children"`
}

// CMSService manages the page tree. Structural changes rebuild the
// nested-set columns of the whole tree in the same transaction.
type CMSService interface {
	// GetByPath returns the page at path. Non-public pages are only
	// returned to moderators.
	GetByPath(ctx context.Context, viewerID uuid.UUID, path string) (*PageView, error)

	Navigation(ctx context.Context) ([]*domain.NavItem, error)
	Create(ctx context.Context, moderatorID uuid.UUID, in PageInput) (*domain.Page, error)
	Update(ctx context.Context, moderatorID, pageID uuid.UUID, upd PageUpdate) (*domain.Page, error)

	// Move reparents a page. Moving a page below itself returns domain.ErrInvalidMove.
	Move(ctx context.Context, moderatorID, pageID uuid.UUID, parentID uuid.NullUUID, order int) (*domain.Page, error)

	// Delete removes a page and all of its descendants.
	Delete(ctx context.Context, moderatorID, pageID uuid.UUID) error
}

type cmsService struct {
	deps Deps
}

// NewCMSService creates a CMSService.
func NewCMSService(deps Deps) CMSService {
	return &cmsService{deps: deps.withComponent("cms_service")}
}

func requireModerator(ctx context.Context, st store.Stores, accountID uuid.UUID) error {
	mod, err := isModerator(ctx, st, accountID)
	if err != nil {
		return err
	}
	if !mod {
		return ErrForbidden
	}
	return nil
}

func findPage(pages []*domain.Page, id uuid.UUID) *domain.Page {
	for _, p := range pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *cmsService) GetByPath(ctx context.Context, viewerID uuid.UUID, path string) (*PageView, error) {
	st := s.deps.UoW.Stores()
	page, err := st.Pages.GetByURL(ctx, domain.NormalizePagePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}
	mod, err := isModerator(ctx, st, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer: %w", err)
	}
	if !page.IsPublic && !mod {
		return nil, fmt.Errorf("failed to load page: %w", store.ErrPageNotFound)
	}

	pages, err := st.Pages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load page tree: %w", err)
	}
	view := &PageView{Page: page, Breadcrumbs: []*domain.Page{}, Children: []*domain.Page{}}
	for _, p := range pages {
		if !p.IsPublic && !mod {
			continue
		}
		switch {
		case page.IsDescendantOf(p):
			view.Breadcrumbs = append(view.Breadcrumbs, p)
		case p.ParentID.Valid && p.ParentID.UUID == page.ID:
			view.Children = append(view.Children, p)
		}
	}
	return view, nil
}

func (s *cmsService) Navigation(ctx context.Context) ([]*domain.NavItem, error) {
	pages, err := s.deps.UoW.Stores().Pages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load page tree: %w", err)
	}
	nav := domain.BuildNavigation(pages)
	if nav == nil {
		nav = []*domain.NavItem{}
	}
	return nav, nil
}

func (s *cmsService) Create(ctx context.Context, moderatorID uuid.UUID, in PageInput) (*domain.Page, error) {
	page, err := domain.NewPage(in.ParentID, in.Title, in.Slug, in.Content, in.IsPublic, in.InNavigation, in.Order, s.deps.now())
	if err != nil {
		return nil, err
	}

	err = s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if err := requireModerator(ctx, st, moderatorID); err != nil {
			return err
		}
		pages, err := st.Pages.ListAll(ctx)
		if err != nil {
			return err
		}
		if in.ParentID.Valid && findPage(pages, in.ParentID.UUID) == nil {
			return store.ErrPageNotFound
		}
		pages = append(pages, page)
		if err := domain.RebuildTree(pages); err != nil {
			return err
		}
		if err := st.Pages.Create(ctx, page); err != nil {
			return err
		}
		return st.Pages.SaveTree(ctx, pages)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	s.deps.log(ctx).Info("page created", "page_id", page.ID, "url", page.URL)
	return page, nil
}

func (s *cmsService) Update(ctx context.Context, moderatorID, pageID uuid.UUID, upd PageUpdate) (*domain.Page, error) {
	var page *domain.Page
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if err := requireModerator(ctx, st, moderatorID); err != nil {
			return err
		}
		pages, err := st.Pages.ListAll(ctx)
		if err != nil {
			return err
		}
		if page = findPage(pages, pageID); page == nil {
			return store.ErrPageNotFound
		}

		if upd.Title != nil {
			page.Title = strings.TrimSpace(*upd.Title)
		}
		if upd.Content != nil {
			page.Content = *upd.Content
		}
		if upd.IsPublic != nil {
			page.IsPublic = *upd.IsPublic
		}
		if upd.InNavigation != nil {
			page.InNavigation = *upd.InNavigation
		}
		slugChanged := false
		if upd.Slug != nil {
			slug := domain.Slugify(*upd.Slug)
			slugChanged = slug != page.Slug
			page.Slug = slug
		}
		if err := page.Validate(); err != nil {
			return err
		}
		page.Updated = s.deps.now()

		if err := st.Pages.Update(ctx, page); err != nil {
			return err
		}
		if !slugChanged {
			return nil
		}
		if err := domain.RebuildTree(pages); err != nil {
			return err
		}
		return st.Pages.SaveTree(ctx, pages)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	return page, nil
}

func (s *cmsService) Move(ctx context.Context, moderatorID, pageID uuid.UUID, parentID uuid.NullUUID, order int) (*domain.Page, error) {
	var page *domain.Page
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if err := requireModerator(ctx, st, moderatorID); err != nil {
			return err
		}
		pages, err := st.Pages.ListAll(ctx)
		if err != nil {
			return err
		}
		if page = findPage(pages, pageID); page == nil {
			return store.ErrPageNotFound
		}
		if parentID.Valid {
			parent := findPage(pages, parentID.UUID)
			if parent == nil {
				return store.ErrPageNotFound
			}
			if parent.ID == page.ID || parent.IsDescendantOf(page) {
				return domain.ErrInvalidMove
			}
		}

		page.ParentID = parentID
		page.Order = order
		page.Updated = s.deps.now()
		if err := domain.RebuildTree(pages); err != nil {
			return err
		}
		return st.Pages.SaveTree(ctx, pages)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move page: %w", err)
	}
	return page, nil
}

func (s *cmsService) Delete(ctx context.Context, moderatorID, pageID uuid.UUID) error {
	var removed []uuid.UUID
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if err := requireModerator(ctx, st, moderatorID); err != nil {
			return err
		}
		pages, err := st.Pages.ListAll(ctx)
		if err != nil {
			return err
		}
		page := findPage(pages, pageID)
		if page == nil {
			return store.ErrPageNotFound
		}

		var keep []*domain.Page
		for _, p := range pages {
			if p.ID == page.ID || p.IsDescendantOf(page) {
				removed = append(removed, p.ID)
				continue
			}
			keep = append(keep, p)
		}
		if err := st.Pages.Delete(ctx, removed); err != nil {
			return err
		}
		if err := domain.RebuildTree(keep); err != nil {
			return err
		}
		return st.Pages.SaveTree(ctx, keep)
	})
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	s.deps.log(ctx).Info("page deleted", "page_id", pageID, "removed", len(removed))
	return nil
}
