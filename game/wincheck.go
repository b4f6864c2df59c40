package game

type Winner int

const (
	WinnerNone Winner = iota
	WinnerMafia
	WinnerVillagers
)

func (w Winner) String() string {
	switch w {
	case WinnerMafia:
		return "mafia"
	case WinnerVillagers:
		return "villagers"
	}
	return "none"
}

// EvaluateWinner runs after every elimination. The town wins the moment the
// last mafioso is gone; the mafia win once they match or outnumber everyone
// else still alive.
func EvaluateWinner(aliveMafia, aliveOthers int) Winner {
	if aliveMafia == 0 {
		return WinnerVillagers
	}
	if aliveMafia >= aliveOthers {
		return WinnerMafia
	}
	return WinnerNone
}
