package game

// TrainType defines one kind of train.
type TrainType struct {
	Name     string
	Cost     int
	Exchange int    // price when trading in an older train; 0 = no exchange
	Count    int    // number available from the bank
	Phase    string // phase triggered when the first one is bought
}

// Train is a single physical train.
type Train struct {
	ttype     *TrainType
	rusted    bool
	portfolio *Portfolio
}

// Type returns the train's type.
func (t *Train) Type() *TrainType { return t.ttype }

// Rusted reports whether the train has rusted.
func (t *Train) Rusted() bool { return t.rusted }

// Portfolio returns the portfolio holding the train.
func (t *Train) Portfolio() *Portfolio { return t.portfolio }
