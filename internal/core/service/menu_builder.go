package service

import "github.com/agrocean/console/internal/core/domain"

// MenuBuilder renders the navigation menu for an identity.
type MenuBuilder struct {
	sections []domain.MenuSection
}

// NewMenuBuilder validates sections against the route table.
func NewMenuBuilder(sections []domain.MenuSection) (*MenuBuilder, error) {
	if err := domain.ValidateMenu(sections); err != nil {
		return nil, err
	}
	return &MenuBuilder{sections: sections}, nil
}

// Build returns a fresh menu: the home entry, then every section the identity
// may see, in declaration order. A nil identity gets an empty menu.
func (b *MenuBuilder) Build(identity *domain.Identity) []domain.MenuItem {
	if identity == nil {
		return []domain.MenuItem{}
	}

	items := []domain.MenuItem{render(domain.HomeEntry, nil)}
	for _, s := range b.sections {
		req := s.Requirement()
		if !HasAnyRole(identity, req.Roles) {
			continue
		}
		for _, e := range s.Entries {
			if e.Only != nil && !HasAnyRole(identity, e.Only) {
				continue
			}
			items = append(items, render(e, identity))
		}
	}
	return items
}

func render(e domain.MenuEntry, identity *domain.Identity) domain.MenuItem {
	item := domain.MenuItem{Label: e.Label, Icon: e.Icon, RouterLink: e.RouterLink}
	for _, child := range e.Children {
		if child.Only != nil && !HasAnyRole(identity, child.Only) {
			continue
		}
		item.Items = append(item.Items, render(child, identity))
	}
	return item
}
