package social

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Empty(t *testing.T) {
	reg, _ := newTestRegistry()

	assert.Equal(t, 0, reg.TotalUsers())
	assert.Equal(t, 0, reg.TotalGroups())
	assert.Equal(t, 0, reg.TotalMessages())
	assert.Equal(t, 0.0, reg.GlobalPositivityPercentage())
	assert.True(t, reg.VerifyIDs())
	assert.NoError(t, reg.ValidateIDs())

	id, ok := reg.LastUpdatedUser()
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestRegistry_LookupAbsent(t *testing.T) {
	reg, _ := newTestRegistry()

	u, ok := reg.GetUser("ghost")
	assert.False(t, ok)
	assert.Nil(t, u)

	g, ok := reg.GetGroup("ghost")
	assert.False(t, ok)
	assert.Nil(t, g)
}

func TestRegistry_AddUserOverwrites(t *testing.T) {
	reg, _ := newTestRegistry()
	first := reg.AddUser("alice")
	first.Post("old")

	second := reg.AddUser("alice")

	got, ok := reg.GetUser("alice")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Empty(t, got.NewsFeed())
	assert.Equal(t, 1, reg.TotalUsers())
	assert.Equal(t, 0, reg.TotalMessages())
}

func TestRegistry_AddGroupOverwrites(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.AddGroup("g").AddMember(reg.AddUser("alice"))
	reg.AddGroup("g")

	g, ok := reg.GetGroup("g")
	require.True(t, ok)
	assert.Empty(t, g.Members())
	assert.Equal(t, 1, reg.TotalGroups())
}

func TestRegistry_ListsSortedIDs(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.AddUser("carol")
	reg.AddUser("alice")
	reg.AddGroup("zeta")
	reg.AddGroup("beta")

	assert.Equal(t, []string{"alice", "carol"}, reg.UserIDs())
	assert.Equal(t, []string{"beta", "zeta"}, reg.GroupIDs())
}

func TestRegistry_TotalMessagesCountsDistinctEntries(t *testing.T) {
	reg, _ := newTestRegistry()
	alice := reg.AddUser("alice")
	bob := reg.AddUser("bob")
	carol := reg.AddUser("carol")
	require.NoError(t, bob.Follow(alice))
	require.NoError(t, carol.Follow(alice))

	// One post lands in three feeds but is one message.
	alice.Post("hello")
	assert.Equal(t, 1, reg.TotalMessages())

	// Same text by a different author is a different entry.
	bob.Post("hello")
	assert.Equal(t, 2, reg.TotalMessages())

	// Reposting identical text does not add to the total.
	alice.Post("hello")
	assert.Equal(t, 2, reg.TotalMessages())
}

func TestRegistry_TotalMessagesKeysOnFormattedEntry(t *testing.T) {
	reg, _ := newTestRegistry()
	x := reg.AddUser("x")
	y := reg.AddUser("y")

	x.Post("y: same")
	y.Post("same")

	// "x: y: same" and "y: same" differ.
	assert.Equal(t, 2, reg.TotalMessages())
}

func TestRegistry_GlobalPositivityPerDistinctMessage(t *testing.T) {
	reg, _ := newTestRegistry()
	alice := reg.AddUser("alice")
	for _, id := range []string{"f1", "f2", "f3"} {
		require.NoError(t, reg.AddUser(id).Follow(alice))
	}

	alice.Post("awesome")
	alice.Post("meh")

	// Four copies of each entry exist, but each is scored once.
	assert.Equal(t, 50.0, reg.GlobalPositivityPercentage())
}

func TestRegistry_GlobalAndUserWordListsDiffer(t *testing.T) {
	reg, _ := newTestRegistry()
	alice := reg.AddUser("alice")

	alice.Post("perfect")
	alice.Post("cool")

	assert.Equal(t, 50.0, alice.PositivityPercentage())
	assert.Equal(t, 50.0, reg.GlobalPositivityPercentage())

	custom, _ := newTestRegistry(WithGlobalScorer(NewScorer("cool", "perfect")))
	bob := custom.AddUser("bob")
	bob.Post("perfect")
	bob.Post("cool")
	assert.Equal(t, 100.0, custom.GlobalPositivityPercentage())
}

func TestRegistry_VerifyIDs(t *testing.T) {
	cases := []struct {
		name   string
		users  []string
		groups []string
		valid  bool
		reason string
	}{
		{name: "unique", users: []string{"alice", "bob"}, groups: []string{"team"}, valid: true},
		{name: "space in user", users: []string{"alice smith"}, reason: ReasonWhitespace},
		{name: "space in group", users: []string{"alice"}, groups: []string{"the team"}, reason: ReasonWhitespace},
		{name: "tab in user is allowed", users: []string{"a\tb"}, valid: true},
		{name: "newline in group is allowed", users: []string{"alice"}, groups: []string{"a\nb"}, valid: true},
		{name: "user and group share id", users: []string{"dup"}, groups: []string{"dup"}, reason: ReasonDuplicate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, _ := newTestRegistry()
			for _, id := range tc.users {
				reg.AddUser(id)
			}
			for _, id := range tc.groups {
				reg.AddGroup(id)
			}

			assert.Equal(t, tc.valid, reg.VerifyIDs())

			err := reg.ValidateIDs()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidID)
			var invalid *InvalidIDError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.reason, invalid.Reason)
		})
	}
}

func TestRegistry_ValidateIDsReportsFirstViolation(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.AddUser("b c")
	reg.AddUser("a b")
	reg.AddGroup("x y")

	var invalid *InvalidIDError
	require.ErrorAs(t, reg.ValidateIDs(), &invalid)
	assert.Equal(t, "user", invalid.Kind)
	assert.Equal(t, "a b", invalid.ID)
	assert.Contains(t, invalid.Error(), `"a b"`)
}

func TestRegistry_LastUpdatedUser(t *testing.T) {
	reg, clock := newTestRegistry()
	alice := reg.AddUser("alice")
	bob := reg.AddUser("bob")
	carol := reg.AddUser("carol")
	require.NoError(t, carol.Follow(bob))

	clock.Advance(time.Second)
	alice.Post("first")
	id, ok := reg.LastUpdatedUser()
	require.True(t, ok)
	assert.Equal(t, "alice", id)

	clock.Advance(time.Second)
	bob.Post("second")
	id, _ = reg.LastUpdatedUser()
	assert.Contains(t, []string{"bob", "carol"}, id)

	clock.Advance(time.Second)
	reg.AddUser("dave")
	id, _ = reg.LastUpdatedUser()
	assert.Equal(t, "dave", id)
}

func TestRegistry_LastUpdatedUserFollowerReceipt(t *testing.T) {
	reg, clock := newTestRegistry()
	alice := reg.AddUser("alice")
	bob := reg.AddUser("bob")
	reg.AddUser("carol")
	require.NoError(t, bob.Follow(alice))

	clock.Advance(time.Second)
	alice.Post("hey")
	clock.Advance(time.Second)
	reg.AddUser("carol")
	clock.Advance(time.Second)
	require.NoError(t, bob.Follow(alice))

	// carol was recreated after the post; no later feed change happened.
	id, _ := reg.LastUpdatedUser()
	assert.Equal(t, "carol", id)
}

func TestRegistry_ObserverSeesMutations(t *testing.T) {
	var (
		mu     sync.Mutex
		events []Event
	)
	reg, _ := newTestRegistry(WithObserver(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}))
	alice := reg.AddUser("alice")
	bob := reg.AddUser("bob")
	carol := reg.AddUser("carol")

	require.NoError(t, carol.Follow(alice))
	require.NoError(t, bob.Follow(alice))
	require.NoError(t, bob.Follow(alice))
	alice.Post("good")
	require.NoError(t, bob.Unfollow(alice))

	require.Len(t, events, 4)
	assert.Equal(t, EventFollowed, events[0].Kind)
	assert.Equal(t, "carol", events[0].ActorID)
	assert.Equal(t, "alice", events[0].TargetID)
	assert.Equal(t, EventPosted, events[2].Kind)
	assert.Equal(t, "alice: good", events[2].Entry)
	assert.Equal(t, "good", events[2].Text)
	assert.Equal(t, []string{"bob", "carol"}, events[2].Recipients)
	assert.Equal(t, EventUnfollowed, events[3].Kind)
}

func TestRegistry_ObserverMayReadRegistry(t *testing.T) {
	var reg *Registry
	var seen int
	reg, _ = newTestRegistry(WithObserver(func(ev Event) {
		seen = reg.TotalMessages()
	}))

	reg.AddUser("alice").Post("x")
	assert.Equal(t, 1, seen)
}

func TestRegistry_ConcurrentPostsAreAtomic(t *testing.T) {
	reg := NewRegistry()
	author := reg.AddUser("author")
	const followers = 20
	for i := 0; i < followers; i++ {
		require.NoError(t, reg.AddUser(string(rune('a'+i))).Follow(author))
	}

	const posts = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < posts; i++ {
			author.Post("msg")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < posts; i++ {
			reg.mu.RLock()
			want := len(author.feed)
			for id, u := range reg.users {
				if id == "author" {
					continue
				}
				if len(u.feed) != want {
					t.Errorf("follower %s has %d entries, author has %d", id, len(u.feed), want)
				}
			}
			reg.mu.RUnlock()
		}
	}()
	wg.Wait()

	for _, id := range reg.UserIDs() {
		u, _ := reg.GetUser(id)
		assert.Len(t, u.NewsFeed(), posts, id)
	}
	assert.Equal(t, 1, reg.TotalMessages())
}
