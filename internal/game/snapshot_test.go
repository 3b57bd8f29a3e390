package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackd/internal/randutil"
)

func TestSnapshotRoundTripMidRound(t *testing.T) {
	r := testRound(Config{})
	stackShoe(r, "5h6cTh7c8d", "")

	require.True(t, r.PlaceBet(100).Success)
	require.True(t, r.Deal().Success)
	require.Equal(t, StatePlayerTurn, r.State())

	snap := r.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := RestoreRound(decoded, randutil.New(99), nil)
	assert.Equal(t, r.ID, restored.ID)
	assert.Equal(t, r.State(), restored.State())
	assert.Equal(t, r.Player().Chips, restored.Player().Chips)
	assert.Equal(t, r.Shoe().Remaining(), restored.Shoe().Remaining())
	assert.Equal(t, r.Player().Hands[0].Cards, restored.Player().Hands[0].Cards)
	assert.Equal(t, r.Dealer().Cards, restored.Dealer().Cards)
	assert.True(t, restored.Dealer().HoleHidden)

	// Playing on from the restored round matches the original shoe order.
	require.True(t, restored.Hit().Success)
	assert.Equal(t, 19, restored.Player().ActiveHand().Value())

	require.True(t, restored.Stand().Success)
	assert.Equal(t, ResultWin, restored.Result())
	assert.Equal(t, 1100, restored.Player().Chips)
}

func TestSnapshotCarriesOffersAndAudit(t *testing.T) {
	r := testRound(Config{})
	stackShoe(r, "KhQd8cTs", "")

	require.True(t, r.PlaceBet(100).Success)
	require.True(t, r.Deal().Success)
	require.True(t, r.Stand().Success)

	r.NewGame()
	stackShoe(r, "Th9cKcAh", "")
	require.True(t, r.PlaceBet(100).Success)
	require.True(t, r.Deal().Success)
	require.True(t, r.InsurancePending())

	restored := RestoreRound(r.Snapshot(), randutil.New(99), nil)
	assert.True(t, restored.InsurancePending())
	assert.Equal(t, 50, restored.InsuranceAmount())
	require.Len(t, restored.Audit().Records(), 1)
	assert.Equal(t, ResultWin, restored.Audit().Records()[0].Result)

	// Offers survive restoration and still gate play.
	assert.False(t, restored.Hit().Success)
	res := restored.InsuranceDecision("buy")
	require.True(t, res.Success)
	assert.True(t, res.GameOver)
	assert.Equal(t, ResultLoss, restored.Result())
	assert.Equal(t, 1100, restored.Player().Chips)
}
