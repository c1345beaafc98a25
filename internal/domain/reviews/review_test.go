package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitValidatesRating(t *testing.T) {
	for _, rating := range []int{0, -1, 6} {
		_, err := Submit(SubmitParams{ID: "r1", ConversationID: "conv1", ReviewerID: "bob", RevieweeID: "alice", Rating: rating})
		require.ErrorIs(t, err, ErrInvalidRating)
	}

	review, err := Submit(SubmitParams{
		ID: "r1", ConversationID: "conv1", ReviewerID: "bob", RevieweeID: "alice",
		Rating: 5, Text: "  smooth handover  ", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, "smooth handover", review.Text)
	require.Len(t, review.PendingEvents(), 1)
}

func TestTrustScoreMeanRoundedToTwoDecimals(t *testing.T) {
	require.Zero(t, TrustScore(nil))

	items := []*Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	// 13/3 = 4.3333...
	require.Equal(t, 4.33, TrustScore(items))

	items = append(items, &Review{Rating: 5}, &Review{Rating: 5}, &Review{Rating: 2})
	// 25/6 = 4.1666...
	require.Equal(t, 4.17, TrustScore(items))
}
