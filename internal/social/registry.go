package social

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/util"
)

var logg = logger.New()

// EventKind names a graph change reported to the Observer.
type EventKind string

const (
	EventPosted     EventKind = "post_created"
	EventFollowed   EventKind = "user_followed"
	EventUnfollowed EventKind = "user_unfollowed"
)

// Event describes a completed mutation. Recipients is set for posts only and
// lists the followers that received the entry.
type Event struct {
	Kind       EventKind
	ActorID    string
	TargetID   string
	Text       string
	Entry      string
	Recipients []string
	At         time.Time
}

// Observer is called after each post, follow and unfollow, outside the
// registry lock. It must not block.
type Observer func(Event)

// Option configures a Registry.
type Option func(*Registry)

func WithClock(c util.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithUserScorer sets the scorer used by User.PositivityPercentage.
func WithUserScorer(s Scorer) Option {
	return func(r *Registry) { r.userScorer = s }
}

// WithGlobalScorer sets the scorer used by GlobalPositivityPercentage.
func WithGlobalScorer(s Scorer) Option {
	return func(r *Registry) { r.globalScorer = s }
}

func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// Registry owns every User and Group and answers aggregate queries.
//
// A single RWMutex guards the registry and everything it owns. Mutations take
// the write lock, so a post and its fan-out are one step for readers, and
// every aggregate query reads a consistent snapshot.
type Registry struct {
	mu     sync.RWMutex
	users  map[string]*User
	groups map[string]*Group

	clock        util.Clock
	userScorer   Scorer
	globalScorer Scorer
	observer     Observer
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		users:        make(map[string]*User),
		groups:       make(map[string]*Group),
		clock:        util.NewRealClock(),
		userScorer:   NewScorer(DefaultUserWords...),
		globalScorer: NewScorer(DefaultGlobalWords...),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) emit(ev Event) {
	if r.observer != nil {
		r.observer(ev)
	}
}

// --- Directory ---

// AddUser creates a user and stores it under id. An existing user with the
// same id is replaced: every follow edge to or from the old user is dropped,
// so the new user starts with no followers and no followings. The old handle
// stays readable but can no longer follow or be followed.
func (r *Registry) AddUser(id string) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.users[id]; exists {
		logg.Debug("registry", "Replacing existing user "+id)
		r.detachLocked(old)
	}
	u := newUser(r, id, r.clock.NowUtc())
	r.users[id] = u
	return u
}

// detachLocked removes every edge that names old's id. Requires the write lock.
func (r *Registry) detachLocked(old *User) {
	for _, u := range r.users {
		delete(u.followers, old.id)
		if i := slices.Index(u.following, old.id); i >= 0 {
			u.following = slices.Delete(u.following, i, i+1)
		}
	}
	old.following = nil
	old.followers = make(map[string]struct{})
}

// registeredLocked reports whether u is the user currently stored under its id.
func (r *Registry) registeredLocked(u *User) bool {
	return r.users[u.id] == u
}

// AddGroup creates a group and stores it under id, replacing any previous one.
func (r *Registry) AddGroup(id string) *Group {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[id]; exists {
		logg.Debug("registry", "Replacing existing group "+id)
	}
	g := newGroup(r, id, r.clock.NowUtc())
	r.groups[id] = g
	return g
}

func (r *Registry) GetUser(id string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *Registry) GetGroup(id string) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	return g, ok
}

// UserIDs returns every user id, sorted.
func (r *Registry) UserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.users)
}

// GroupIDs returns every group id, sorted.
func (r *Registry) GroupIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.groups)
}

// --- Aggregates ---

func (r *Registry) TotalUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *Registry) TotalGroups() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// TotalMessages counts distinct feed entries across all users. Two identical
// "author: text" entries count once, wherever and however often they appear.
func (r *Registry) TotalMessages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.distinctMessages())
}

// GlobalPositivityPercentage scores each distinct feed entry once with the
// global scorer. It returns 0 when there are no messages.
func (r *Registry) GlobalPositivityPercentage() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	distinct := r.distinctMessages()
	positive := 0
	for msg := range distinct {
		if r.globalScorer.Positive(msg) {
			positive++
		}
	}
	return percentage(positive, len(distinct))
}

func (r *Registry) distinctMessages() map[string]struct{} {
	set := make(map[string]struct{})
	for _, u := range r.users {
		for _, entry := range u.feed {
			set[entry] = struct{}{}
		}
	}
	return set
}

// VerifyIDs reports whether every user and group id is free of space
// characters and unique across users and groups combined. Only U+0020 is
// rejected; tabs and newlines pass. An empty registry is valid.
func (r *Registry) VerifyIDs() bool {
	return r.ValidateIDs() == nil
}

// ValidateIDs is VerifyIDs with the first violation as an *InvalidIDError.
// User ids are checked before group ids, each in sorted order.
func (r *Registry) ValidateIDs() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.users)+len(r.groups))
	check := func(kind, id string) error {
		if strings.Contains(id, " ") {
			return &InvalidIDError{Kind: kind, ID: id, Reason: ReasonWhitespace}
		}
		if _, dup := seen[id]; dup {
			return &InvalidIDError{Kind: kind, ID: id, Reason: ReasonDuplicate}
		}
		seen[id] = struct{}{}
		return nil
	}

	for _, id := range sortedKeys(r.users) {
		if err := check("user", id); err != nil {
			return err
		}
	}
	for _, id := range sortedKeys(r.groups) {
		if err := check("group", id); err != nil {
			return err
		}
	}
	return nil
}

// LastUpdatedUser returns the id of the user whose feed changed most
// recently. Users that never received an entry count from creation time.
// Which user wins a tie is undefined.
func (r *Registry) LastUpdatedUser() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		bestID string
		best   time.Time
		found  bool
	)
	for id, u := range r.users {
		if !found || u.lastUpdatedAt.After(best) {
			bestID, best, found = id, u.lastUpdatedAt, true
		}
	}
	return bestID, found
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
