package biomech

import (
	"math"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/pose"
)

// MaxHandednessVotes bounds the rolling vote window.
const MaxHandednessVotes = 20

// HandednessResult is the rolling dominant-hand estimate.
type HandednessResult struct {
	Hand       pose.Side   `json:"hand"`
	Confidence int         `json:"confidence"`
	Votes      []pose.Side `json:"votes"`
}

// UpdateHandednessVote appends this frame's "higher wrist" vote to priorVotes,
// keeps the most recent MaxHandednessVotes and returns the majority. Ties go to
// the right hand. priorVotes is never modified; the caller stores Votes for the
// next frame. An invalid pose casts no vote.
func UpdateHandednessVote(p pose.Pose, priorVotes []pose.Side) HandednessResult {
	votes := make([]pose.Side, 0, len(priorVotes)+1)
	votes = append(votes, priorVotes...)
	if p.Valid() {
		if p[pose.RightWrist].Y < p[pose.LeftWrist].Y {
			votes = append(votes, pose.Right)
		} else {
			votes = append(votes, pose.Left)
		}
	}
	if len(votes) > MaxHandednessVotes {
		votes = votes[len(votes)-MaxHandednessVotes:]
	}

	return tallyVotes(votes)
}

func tallyVotes(votes []pose.Side) HandednessResult {
	var right, left int
	for _, v := range votes {
		if v == pose.Right {
			right++
		} else {
			left++
		}
	}

	result := HandednessResult{Hand: pose.Right, Votes: votes}
	if left > right {
		result.Hand = pose.Left
	}
	if total := len(votes); total > 0 {
		result.Confidence = int(math.Round(float64(max(right, left)) / float64(total) * 100))
	}
	return result
}
