package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_JoinLeaveMembership(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a := NewClient(nil)
	b := NewClient(nil)

	req.Zero(reg.Members("ABC123"))

	reg.Join("ABC123", a)
	reg.Join("ABC123", b)
	req.Equal(2, reg.Members("ABC123"))

	// Rejoining is idempotent.
	reg.Join("ABC123", a)
	req.Equal(2, reg.Members("ABC123"))

	reg.Leave("ABC123", a)
	req.Equal(1, reg.Members("ABC123"))

	reg.Leave("ABC123", b)
	req.Zero(reg.Members("ABC123"))
}

func TestRegistry_LeaveUnknownRoomIsHarmless(t *testing.T) {
	reg := NewRegistry()
	reg.Leave("NOPE42", NewClient(nil))
}

func TestRegistry_RoomsAreIndependent(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a := NewClient(nil)
	b := NewClient(nil)

	reg.Join("AAAAAA", a)
	reg.Join("BBBBBB", b)

	req.Equal(1, reg.Members("AAAAAA"))
	req.Equal(1, reg.Members("BBBBBB"))

	reg.Leave("AAAAAA", a)
	req.Zero(reg.Members("AAAAAA"))
	req.Equal(1, reg.Members("BBBBBB"))
}

func TestRegistry_DoSerializesPerSession(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	// A plain counter; only the room lock keeps the increments race-free.
	counter := 0
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Do("ABC123", func() {
				counter++
			})
		}()
	}
	wg.Wait()

	req.Equal(100, counter)
}
