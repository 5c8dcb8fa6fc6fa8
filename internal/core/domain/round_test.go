package domain_test

import (
	"errors"
	"testing"

	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var (
	groups = [][]int64{
		{100_031},
		{100_031, 50_000},
		{20_000},
	}
	results = []domain.Result{
		{ParticipantIndex: 0, Outputs: []int64{100_000}, Leftover: 0},
		{ParticipantIndex: 1, Outputs: []int64{100_000, 49_969}, Leftover: 0},
		{ParticipantIndex: 2, Outputs: []int64{10_000, 9_938}, Leftover: 0},
	}
	changeFee = int64(31)
)

func TestRound(t *testing.T) {
	testStartRegistration(t)

	testRegisterParticipants(t)

	testStartDecomposition(t)

	testRecordDecomposition(t)

	testEndDecomposition(t)

	testFail(t)

	testReplay(t)
}

func testStartRegistration(t *testing.T) {
	t.Run("start_registration", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := domain.NewRound()
			require.NotNil(t, round)
			require.NotEmpty(t, round.Id)
			require.Empty(t, round.Events())
			require.False(t, round.IsStarted())
			require.False(t, round.IsEnded())
			require.False(t, round.IsFailed())

			events, err := round.StartRegistration()
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.True(t, round.IsStarted())
			require.False(t, round.IsEnded())
			require.False(t, round.IsFailed())

			event, ok := events[0].(domain.RoundStarted)
			require.True(t, ok)
			require.Equal(t, round.Id, event.Id)
			require.Equal(t, round.StartingTimestamp, event.Timestamp)
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				round       *domain.Round
				expectedErr string
			}{
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code:   domain.UndefinedStage,
							Failed: true,
						},
					},
					expectedErr: "not in a valid stage to start participants registration",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.RegistrationStage,
						},
					},
					expectedErr: "not in a valid stage to start participants registration",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.DecompositionStage,
						},
					},
					expectedErr: "not in a valid stage to start participants registration",
				},
			}

			for _, f := range fixtures {
				events, err := f.round.StartRegistration()
				require.EqualError(t, err, f.expectedErr)
				require.Empty(t, events)
			}
		})
	})
}

func testRegisterParticipants(t *testing.T) {
	t.Run("register_participants", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := domain.NewRound()
			_, err := round.StartRegistration()
			require.NoError(t, err)

			events, err := round.RegisterParticipants(groups)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.Len(t, round.Participants, len(groups))
			for i, p := range round.Participants {
				require.Equal(t, i, p.Index)
				require.Equal(t, groups[i], p.Inputs)
			}
			require.Equal(t, int64(100_031*2+50_000+20_000), round.TotInputAmount())

			event, ok := events[0].(domain.ParticipantsRegistered)
			require.True(t, ok)
			require.Equal(t, round.Id, event.Id)
			require.Equal(t, round.Participants, event.Participants)
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				round       *domain.Round
				groups      [][]int64
				expectedErr string
			}{
				{
					round:       &domain.Round{Id: "id"},
					groups:      groups,
					expectedErr: "not in a valid stage to register participants",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code:   domain.RegistrationStage,
							Failed: true,
						},
					},
					groups:      groups,
					expectedErr: "not in a valid stage to register participants",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.DecompositionStage,
						},
					},
					groups:      groups,
					expectedErr: "not in a valid stage to register participants",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.RegistrationStage,
						},
					},
					groups:      nil,
					expectedErr: "missing participants to register",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.RegistrationStage,
						},
					},
					groups:      [][]int64{{1000}, {}},
					expectedErr: "participant 1: missing inputs",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.RegistrationStage,
						},
					},
					groups:      [][]int64{{1000, -1}},
					expectedErr: "participant 0: input amount must be positive",
				},
			}

			for _, f := range fixtures {
				events, err := f.round.RegisterParticipants(f.groups)
				require.EqualError(t, err, f.expectedErr)
				require.Empty(t, events)
			}
		})
	})
}

func testStartDecomposition(t *testing.T) {
	t.Run("start_decomposition", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := registeredRound(t)

			events, err := round.StartDecomposition(1000, changeFee)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.Equal(t, domain.DecompositionStage, round.Stage.Code)
			require.Equal(t, int64(1000), round.FeeRate)
			require.Equal(t, changeFee, round.ChangeFee)
			require.True(t, round.IsStarted())

			event, ok := events[0].(domain.DecompositionStarted)
			require.True(t, ok)
			require.Equal(t, round.Id, event.Id)
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				round       *domain.Round
				expectedErr string
			}{
				{
					round:       &domain.Round{Id: "id"},
					expectedErr: "not in a valid stage to start decomposition",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.DecompositionStage,
						},
					},
					expectedErr: "not in a valid stage to start decomposition",
				},
				{
					round: &domain.Round{
						Id: "id",
						Stage: domain.Stage{
							Code: domain.RegistrationStage,
						},
					},
					expectedErr: "no participants registered",
				},
			}

			for _, f := range fixtures {
				events, err := f.round.StartDecomposition(1000, changeFee)
				require.EqualError(t, err, f.expectedErr)
				require.Empty(t, events)
			}
		})
	})
}

func testRecordDecomposition(t *testing.T) {
	t.Run("record_decomposition", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := decomposingRound(t)

			for _, r := range results {
				events, err := round.RecordDecomposition(r)
				require.NoError(t, err)
				require.Len(t, events, 1)

				event, ok := events[0].(domain.ParticipantDecomposed)
				require.True(t, ok)
				require.Equal(t, r, event.Result)
			}
			require.Equal(t, results, round.Results)
			require.Equal(t, []int64{0, 0, 0}, round.Leftovers())
			require.Equal(t, int64(100_000*2+49_969+10_000+9_938), round.TotOutputAmount())
			// Only 100000 is produced by two participants.
			require.Equal(t, 1, round.SharedOutputCount())
		})

		t.Run("invalid", func(t *testing.T) {
			round := decomposingRound(t)
			_, err := round.RecordDecomposition(results[1])
			require.EqualError(t, err, "expected decomposition of participant 0, got 1")

			events, err := registeredRound(t).RecordDecomposition(results[0])
			require.EqualError(t, err, "not in a valid stage to record decompositions")
			require.Empty(t, events)
		})
	})
}

func testEndDecomposition(t *testing.T) {
	t.Run("end_decomposition", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			round := decomposingRound(t)
			for _, r := range results {
				_, err := round.RecordDecomposition(r)
				require.NoError(t, err)
			}

			events, err := round.EndDecomposition()
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.True(t, round.IsEnded())
			require.False(t, round.IsStarted())
			require.False(t, round.IsFailed())

			event, ok := events[0].(domain.RoundFinalized)
			require.True(t, ok)
			require.Equal(t, round.EndingTimestamp, event.Timestamp)

			_, err = round.EndDecomposition()
			require.EqualError(t, err, "decomposition already ended")
			_, err = round.RecordDecomposition(domain.Result{ParticipantIndex: 3})
			require.EqualError(t, err, "decomposition already ended")
		})

		t.Run("invalid", func(t *testing.T) {
			round := decomposingRound(t)
			_, err := round.RecordDecomposition(results[0])
			require.NoError(t, err)

			events, err := round.EndDecomposition()
			require.EqualError(t, err, "2 participants left to decompose")
			require.Empty(t, events)

			events, err = registeredRound(t).EndDecomposition()
			require.EqualError(t, err, "not in a valid stage to end decomposition")
			require.Empty(t, events)
		})
	})
}

func testFail(t *testing.T) {
	t.Run("fail", func(t *testing.T) {
		round := decomposingRound(t)

		events := round.Fail(errors.New("some error"))
		require.Len(t, events, 1)
		require.True(t, round.IsFailed())
		require.False(t, round.IsStarted())
		require.False(t, round.IsEnded())
		require.Equal(t, "some error", round.FailReason)

		event, ok := events[0].(domain.RoundFailed)
		require.True(t, ok)
		require.Equal(t, round.Id, event.Id)
		require.Equal(t, "some error", event.Err)

		// Failing twice is a no-op.
		require.Empty(t, round.Fail(errors.New("another error")))
		require.Equal(t, "some error", round.FailReason)

		_, err := round.RecordDecomposition(results[0])
		require.Error(t, err)
	})
}

func testReplay(t *testing.T) {
	t.Run("replay", func(t *testing.T) {
		round := decomposingRound(t)
		for _, r := range results {
			_, err := round.RecordDecomposition(r)
			require.NoError(t, err)
		}
		_, err := round.EndDecomposition()
		require.NoError(t, err)

		replayed := domain.NewRoundFromEvents(round.Events())
		require.Equal(t, round.Id, replayed.Id)
		require.Equal(t, round.Stage, replayed.Stage)
		require.Equal(t, round.Participants, replayed.Participants)
		require.Equal(t, round.Results, replayed.Results)
		require.Equal(t, round.FeeRate, replayed.FeeRate)
		require.Equal(t, round.ChangeFee, replayed.ChangeFee)
		require.Equal(t, uint(len(round.Events())), replayed.Version)
		require.True(t, replayed.IsEnded())
	})
}

func registeredRound(t *testing.T) *domain.Round {
	round := domain.NewRound()
	_, err := round.StartRegistration()
	require.NoError(t, err)
	_, err = round.RegisterParticipants(groups)
	require.NoError(t, err)
	return round
}

func decomposingRound(t *testing.T) *domain.Round {
	round := registeredRound(t)
	_, err := round.StartDecomposition(1000, changeFee)
	require.NoError(t, err)
	return round
}
