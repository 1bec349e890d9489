package social

import (
	"slices"
	"sort"
	"time"
)

// User is a member of the social graph. Users are created by Registry.AddUser
// and every method locks the owning registry, so a *User is safe for
// concurrent use.
//
// Follow edges are stored as ids in both directions. Followers are resolved
// through the registry when a post fans out; ids that no longer resolve are
// skipped.
type User struct {
	reg *Registry

	id        string
	following []string
	followers map[string]struct{}
	feed      []string

	createdAt     time.Time
	lastUpdatedAt time.Time
}

func newUser(reg *Registry, id string, now time.Time) *User {
	return &User{
		reg:           reg,
		id:            id,
		followers:     make(map[string]struct{}),
		createdAt:     now,
		lastUpdatedAt: now,
	}
}

func (u *User) ID() string { return u.id }

// MemberID implements Member.
func (u *User) MemberID() string { return u.id }

func (u *User) member() {}

// Follow makes u follow other. Following an already followed id is a no-op.
// Both sides of the edge are written under one lock. A user that has been
// replaced by Registry.AddUser cannot take part and yields ErrNotFound.
func (u *User) Follow(other *User) error {
	if other == nil {
		return ErrNotFound
	}
	if other.reg != u.reg {
		return ErrForeignUser
	}

	r := u.reg
	r.mu.Lock()
	if !r.registeredLocked(u) || !r.registeredLocked(other) {
		r.mu.Unlock()
		return ErrNotFound
	}
	if slices.Contains(u.following, other.id) {
		r.mu.Unlock()
		return nil
	}
	u.following = append(u.following, other.id)
	other.followers[u.id] = struct{}{}
	ev := Event{Kind: EventFollowed, ActorID: u.id, TargetID: other.id, At: r.clock.NowUtc()}
	r.mu.Unlock()

	r.emit(ev)
	return nil
}

// Unfollow removes the edge from u to other on both sides. It is a no-op when
// u does not follow other. Errors match Follow.
func (u *User) Unfollow(other *User) error {
	if other == nil {
		return ErrNotFound
	}
	if other.reg != u.reg {
		return ErrForeignUser
	}

	r := u.reg
	r.mu.Lock()
	if !r.registeredLocked(u) || !r.registeredLocked(other) {
		r.mu.Unlock()
		return ErrNotFound
	}
	idx := slices.Index(u.following, other.id)
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	u.following = slices.Delete(u.following, idx, idx+1)
	delete(other.followers, u.id)
	ev := Event{Kind: EventUnfollowed, ActorID: u.id, TargetID: other.id, At: r.clock.NowUtc()}
	r.mu.Unlock()

	r.emit(ev)
	return nil
}

// RemoveFollower drops f from u's followers. The follower's own following
// list is left untouched.
func (u *User) RemoveFollower(f *User) {
	if f == nil {
		return
	}
	u.reg.mu.Lock()
	defer u.reg.mu.Unlock()
	delete(u.followers, f.id)
}

// Post appends "<id>: <text>" to u's feed and to the feed of every current
// follower, then returns the entry. Readers never see a partial fan-out.
// Each follower receives exactly one copy; the author never receives a
// second copy even when following itself.
func (u *User) Post(text string) string {
	entry := u.id + ": " + text

	r := u.reg
	r.mu.Lock()
	now := r.clock.NowUtc()
	u.appendFeed(entry, now)

	recipients := make([]string, 0, len(u.followers))
	for fid := range u.followers {
		if fid == u.id {
			continue
		}
		f, ok := r.users[fid]
		if !ok {
			continue
		}
		f.appendFeed(entry, now)
		recipients = append(recipients, fid)
	}
	r.mu.Unlock()

	sort.Strings(recipients)
	r.emit(Event{
		Kind:       EventPosted,
		ActorID:    u.id,
		Text:       text,
		Entry:      entry,
		Recipients: recipients,
		At:         now,
	})
	return entry
}

// appendFeed requires the registry write lock.
func (u *User) appendFeed(entry string, now time.Time) {
	u.feed = append(u.feed, entry)
	if now.After(u.lastUpdatedAt) {
		u.lastUpdatedAt = now
	}
}

// PositivityPercentage is the share of positive entries in u's feed, in
// [0, 100]. An empty feed scores 0.
func (u *User) PositivityPercentage() float64 {
	u.reg.mu.RLock()
	defer u.reg.mu.RUnlock()
	return percentage(u.reg.userScorer.Count(u.feed), len(u.feed))
}

// Followings returns the followed ids in follow order.
func (u *User) Followings() []string {
	u.reg.mu.RLock()
	defer u.reg.mu.RUnlock()
	return append(make([]string, 0, len(u.following)), u.following...)
}

// Followers returns the follower ids, sorted.
func (u *User) Followers() []string {
	u.reg.mu.RLock()
	defer u.reg.mu.RUnlock()
	ids := make([]string, 0, len(u.followers))
	for id := range u.followers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasFollower reports whether id is among u's followers.
func (u *User) HasFollower(id string) bool {
	u.reg.mu.RLock()
	defer u.reg.mu.RUnlock()
	_, ok := u.followers[id]
	return ok
}

// NewsFeed returns the feed entries in append order.
func (u *User) NewsFeed() []string {
	u.reg.mu.RLock()
	defer u.reg.mu.RUnlock()
	return append(make([]string, 0, len(u.feed)), u.feed...)
}

func (u *User) CreationTime() time.Time {
	return u.createdAt
}

func (u *User) LastUpdateTime() time.Time {
	u.reg.mu.RLock()
	defer u.reg.mu.RUnlock()
	return u.lastUpdatedAt
}
