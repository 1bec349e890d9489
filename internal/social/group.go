package social

import "time"

// Member is anything a Group can hold: a *User or a nested *Group.
// The unexported method keeps the set closed to this package.
type Member interface {
	MemberID() string
	member()
}

// Group is a named, ordered collection of members. Nesting is allowed and
// no cycle check is made; Members returns direct members only.
type Group struct {
	reg *Registry

	id        string
	members   []Member
	createdAt time.Time
}

func newGroup(reg *Registry, id string, now time.Time) *Group {
	return &Group{reg: reg, id: id, createdAt: now}
}

func (g *Group) ID() string { return g.id }

// MemberID implements Member.
func (g *Group) MemberID() string { return g.id }

func (g *Group) member() {}

// AddMember appends m unless the same user or group is already a member.
// A nil member, including a typed nil, yields ErrNotFound; a member owned by
// another registry yields ErrForeignUser.
func (g *Group) AddMember(m Member) error {
	var owner *Registry
	switch v := m.(type) {
	case *User:
		if v == nil {
			return ErrNotFound
		}
		owner = v.reg
	case *Group:
		if v == nil {
			return ErrNotFound
		}
		owner = v.reg
	default:
		return ErrNotFound
	}
	if owner != g.reg {
		return ErrForeignUser
	}

	g.reg.mu.Lock()
	defer g.reg.mu.Unlock()

	for _, existing := range g.members {
		if existing == m {
			return nil
		}
	}
	g.members = append(g.members, m)
	return nil
}

// Members returns the direct members in insertion order.
func (g *Group) Members() []Member {
	g.reg.mu.RLock()
	defer g.reg.mu.RUnlock()
	return append(make([]Member, 0, len(g.members)), g.members...)
}

func (g *Group) CreationTime() time.Time {
	return g.createdAt
}
