package armylistservice

// Batch-failure reasons reported by BuildArmies.
const (
	reasonEmptyInput      = "input is empty"
	reasonNoBlocks        = "no army blocks recognized"
	reasonEveryBlockError = "every army block failed"
)
