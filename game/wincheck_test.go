package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateWinner(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		desc   string
		mafia  int
		others int
		want   Winner
	}{
		{desc: "game in progress", mafia: 1, others: 4, want: WinnerNone},
		{desc: "last mafioso eliminated", mafia: 0, others: 3, want: WinnerVillagers},
		{desc: "mafia equal the rest", mafia: 2, others: 2, want: WinnerMafia},
		{desc: "mafia outnumber the rest", mafia: 2, others: 1, want: WinnerMafia},
		{desc: "no mafia wins even with nobody else alive", mafia: 0, others: 0, want: WinnerVillagers},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, EvaluateWinner(tC.mafia, tC.others))
		})
	}
}
