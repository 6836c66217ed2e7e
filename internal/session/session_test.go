package session

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestSession_AddOrder_AppendsInOrderWithUniqueIDs(t *testing.T) {
	req := require.New(t)
	sess := NewSession("ABC123", 13)

	sess.AddOrder("alice", "Pizza", 2, nil, "")
	sess.AddOrder("bob", "Pasta", 1, nil, "no cheese")
	sess.AddOrder("", "Salad", 1, nil, "")

	req.Len(sess.Orders, 3)
	req.Equal("Pizza", sess.Orders[0].Item)
	req.Equal("Pasta", sess.Orders[1].Item)
	req.Equal("Salad", sess.Orders[2].Item)

	ids := lo.Map(sess.Orders, func(o Order, _ int) string { return o.ID })
	req.Len(lo.Uniq(ids), 3)

	for _, o := range sess.Orders {
		req.False(o.IsOrdered)
		req.NotEmpty(o.ID)
		req.False(o.Timestamp.IsZero())
	}
}

func TestSession_RemoveOrder(t *testing.T) {
	req := require.New(t)
	sess := NewSession("ABC123", 13)

	kept := sess.AddOrder("", "Pizza", 1, nil, "")
	gone := sess.AddOrder("", "Pasta", 1, nil, "")

	sess.RemoveOrder(gone.ID)

	req.Len(sess.Orders, 1)
	req.Equal(kept.ID, sess.Orders[0].ID)

	// Removing an unknown id is a no-op, not an error.
	sess.RemoveOrder("nope")
	req.Len(sess.Orders, 1)
}

func TestSession_ToggleOrder_IsIdempotentUnderDoubleApplication(t *testing.T) {
	req := require.New(t)
	sess := NewSession("ABC123", 13)
	order := sess.AddOrder("", "Pizza", 1, nil, "")

	req.True(sess.ToggleOrder(order.ID))
	req.True(sess.Orders[0].IsOrdered)

	req.True(sess.ToggleOrder(order.ID))
	req.False(sess.Orders[0].IsOrdered)

	req.False(sess.ToggleOrder("missing"))
}

func TestSession_SetTax(t *testing.T) {
	req := require.New(t)
	sess := NewSession("ABC123", 13)
	req.Equal(13.0, sess.TaxPercent)

	sess.SetTax(8.25)
	req.Equal(8.25, sess.TaxPercent)
}

func TestSession_IsExpired(t *testing.T) {
	req := require.New(t)
	sess := NewSession("ABC123", 13)

	req.False(sess.IsExpired(time.Hour))

	sess.CreatedAt = time.Now().Add(-2 * time.Hour)
	req.True(sess.IsExpired(time.Hour))
}

func TestSession_Snapshot_IsACopy(t *testing.T) {
	req := require.New(t)
	sess := NewSession("ABC123", 13)
	sess.AddOrder("", "Pizza", 1, nil, "")

	snap := sess.Snapshot()
	sess.Orders[0].IsOrdered = true

	req.False(snap[0].IsOrdered)
}

func TestGenerateCode_Format(t *testing.T) {
	req := require.New(t)

	for range 100 {
		code := GenerateCode()
		req.Len(code, 6)
		for _, r := range code {
			req.True((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'), "unexpected rune %q in %s", r, code)
		}
	}
}
