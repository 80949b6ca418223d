package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShotRepository_Create(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Sessions().Create(&Session{ID: "s1"}))

	taken := time.Date(2026, 3, 1, 18, 5, 0, 0, time.UTC)
	shot := &Shot{
		SessionID:    "s1",
		Seq:          1,
		Score:        85,
		JumpHeightCM: 23,
		Explosivity:  67,
		Stability:    100,
		ElbowAngle:   142.1,
		KneeAngle:    120,
		ReleaseAngle: 153.4,
		Phase:        "RELEASE",
		TakenAt:      taken,
	}
	require.NoError(t, s.Shots().Create(shot))
	assert.NotZero(t, shot.ID)

	shots, err := s.Shots().ListBySession("s1")
	require.NoError(t, err)
	require.Len(t, shots, 1)

	got := shots[0]
	assert.Equal(t, shot.ID, got.ID)
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, 67, got.Explosivity)
	assert.InDelta(t, 153.4, got.ReleaseAngle, 1e-9)
	assert.Equal(t, "RELEASE", got.Phase)
	assert.True(t, taken.Equal(got.TakenAt), "taken_at = %v", got.TakenAt)

	session, err := s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, session.Shots, "creating a shot bumps the session count")
}

func TestShotRepository_Create_UnknownSession(t *testing.T) {
	err := newTestStore(t).Shots().Create(&Shot{SessionID: "missing", Seq: 1, Phase: "RELEASE"})
	assert.Error(t, err, "foreign key should reject a shot without a session")
}

func TestShotRepository_Create_DuplicateSeq(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Sessions().Create(&Session{ID: "s1"}))
	require.NoError(t, s.Shots().Create(&Shot{SessionID: "s1", Seq: 1, Phase: "RELEASE"}))
	assert.Error(t, s.Shots().Create(&Shot{SessionID: "s1", Seq: 1, Phase: "RELEASE"}))

	session, err := s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, 1, session.Shots, "a failed insert leaves the count untouched")
}

func TestShotRepository_CreateBatch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Sessions().Create(&Session{ID: "s1"}))

	batch := []*Shot{
		{Seq: 2, Score: 70, Phase: "RELEASE"},
		{Seq: 1, Score: 90, Phase: "RELEASE"},
		{Seq: 3, Score: 80, Phase: "RELEASE"},
	}
	require.NoError(t, s.Shots().CreateBatch("s1", batch))

	shots, err := s.Shots().ListBySession("s1")
	require.NoError(t, err)
	require.Len(t, shots, 3)
	for i, sh := range shots {
		assert.Equal(t, i+1, sh.Seq, "shots are ordered by seq")
		assert.Equal(t, "s1", sh.SessionID)
		assert.False(t, sh.TakenAt.IsZero())
	}
	assert.Equal(t, 90, shots[0].Score)

	session, err := s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Equal(t, 3, session.Shots)
}

func TestShotRepository_DeleteBySession(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Sessions().Create(&Session{ID: "s1"}))
	require.NoError(t, s.Sessions().Create(&Session{ID: "s2"}))
	require.NoError(t, s.Shots().CreateBatch("s1", []*Shot{{Seq: 1, Phase: "RELEASE"}, {Seq: 2, Phase: "RELEASE"}}))
	require.NoError(t, s.Shots().CreateBatch("s2", []*Shot{{Seq: 1, Phase: "RELEASE"}}))

	require.NoError(t, s.Shots().DeleteBySession("s1"))

	shots, err := s.Shots().ListBySession("s1")
	require.NoError(t, err)
	assert.Empty(t, shots)

	other, err := s.Shots().ListBySession("s2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	session, err := s.Sessions().GetByID("s1")
	require.NoError(t, err)
	assert.Zero(t, session.Shots)
}
