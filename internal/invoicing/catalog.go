// Package invoicing implements the invoice builder: line-item pricing with
// group discount resolution, percentage-based installment plans, draft
// validation and revenue bucketing. It is a pure in-memory core — no HTTP,
// no database. Handlers feed it a catalog snapshot and a draft, and hand
// the validated result to the persistence layer.
package invoicing

import "github.com/shopspring/decimal"

// ServiceEntry is a read-only catalog row: one billable clinic service.
type ServiceEntry struct {
	ID         uint
	Name       string
	BasePrice  decimal.Decimal
	CategoryID *uint
}

// ServiceGroup is a named bundle of services with an optional blanket
// discount applied to every member unless a link-level override exists.
type ServiceGroup struct {
	ID              uint
	Name            string
	DiscountPercent *decimal.Decimal
}

// GroupLink associates a service with a group. A non-nil DiscountOverride
// takes precedence over the group's blanket discount for that service.
type GroupLink struct {
	GroupID          uint
	ServiceID        uint
	DiscountOverride *decimal.Decimal
}

// Catalog is an id-keyed snapshot of the service catalog, fetched once per
// editing session. Lookups are O(1); the snapshot is never mutated.
type Catalog struct {
	services map[uint]ServiceEntry
	groups   map[uint]ServiceGroup
	links    map[uint][]GroupLink
}

// NewCatalog builds a snapshot from catalog rows.
func NewCatalog(services []ServiceEntry, groups []ServiceGroup, links []GroupLink) *Catalog {
	c := &Catalog{
		services: make(map[uint]ServiceEntry, len(services)),
		groups:   make(map[uint]ServiceGroup, len(groups)),
		links:    make(map[uint][]GroupLink, len(groups)),
	}
	for _, s := range services {
		c.services[s.ID] = s
	}
	for _, g := range groups {
		c.groups[g.ID] = g
	}
	for _, l := range links {
		c.links[l.GroupID] = append(c.links[l.GroupID], l)
	}
	return c
}

// Service returns the catalog entry for a service id.
func (c *Catalog) Service(id uint) (ServiceEntry, bool) {
	s, ok := c.services[id]
	return s, ok
}

// Group returns the group for a group id.
func (c *Catalog) Group(id uint) (ServiceGroup, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// LinksFor returns the membership links of a group, in catalog order.
func (c *Catalog) LinksFor(groupID uint) []GroupLink {
	return c.links[groupID]
}
