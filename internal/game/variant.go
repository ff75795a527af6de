package game

// Variant identifies a poker game by its wire name
type Variant string

const (
	NLH    Variant = "NLH"
	PLO    Variant = "PLO"
	PLO8   Variant = "PLO8"
	Stud   Variant = "7CS"
	Stud8  Variant = "7CS8"
	Razz   Variant = "RAZZ"
	Deuce  Variant = "2-7_TD"
	Badugi Variant = "BADUGI"
	OFC    Variant = "OFC"
)

// Structure is the betting structure of a variant
type Structure int8

const (
	NoLimit Structure = iota
	PotLimit
	FixedLimit
)

// String returns the wire name of a structure
func (s Structure) String() string {
	switch s {
	case NoLimit:
		return "NO_LIMIT"
	case PotLimit:
		return "POT_LIMIT"
	case FixedLimit:
		return "FIXED_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// LowMode selects the low-hand ranking used at showdown
type LowMode int8

const (
	LowNone LowMode = iota
	LowAceToFive
	LowDeuceToSeven
	LowBadugi
)

// Rules is the static rule set of a variant: deal plan, betting
// structure, street list and showdown mode. The engine consults these;
// it never switches on the variant name outside the showdown evaluator.
type Rules struct {
	Variant   Variant
	Name      string
	HoleCards int // cards dealt to each seat before the first street
	HandSize  int // cards in a final hand
	Structure Structure

	HasButton bool
	IsStud    bool
	IsDraw    bool
	MaxDraw   int

	Streets []Phase // betting rounds, in order

	UsesBoard  bool
	OmahaStyle bool // exactly two hole cards at showdown

	Low      LowMode
	LowOnly  bool // low ranking takes the whole pot
	Lo8Split bool // hi/lo split, eight-or-better qualifier
}

var buttonStreets = []Phase{PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver}
var studStreets = []Phase{PhaseThirdStreet, PhaseFourthStreet, PhaseFifthStreet, PhaseSixthStreet, PhaseSeventhStreet}
var drawStreets = []Phase{PhasePredraw, PhaseFirstDraw, PhaseSecondDraw, PhaseThirdDraw}

var variantRules = map[Variant]Rules{
	NLH: {
		Variant: NLH, Name: "No-Limit Hold'em",
		HoleCards: 2, HandSize: 5, Structure: NoLimit,
		HasButton: true, Streets: buttonStreets, UsesBoard: true,
	},
	PLO: {
		Variant: PLO, Name: "Pot-Limit Omaha",
		HoleCards: 4, HandSize: 5, Structure: PotLimit,
		HasButton: true, Streets: buttonStreets, UsesBoard: true, OmahaStyle: true,
	},
	PLO8: {
		Variant: PLO8, Name: "Pot-Limit Omaha Hi-Lo",
		HoleCards: 4, HandSize: 5, Structure: PotLimit,
		HasButton: true, Streets: buttonStreets, UsesBoard: true, OmahaStyle: true,
		Low: LowAceToFive, Lo8Split: true,
	},
	Stud: {
		Variant: Stud, Name: "Seven Card Stud",
		HandSize: 5, Structure: FixedLimit,
		IsStud: true, Streets: studStreets,
	},
	Stud8: {
		Variant: Stud8, Name: "Seven Card Stud Hi-Lo",
		HandSize: 5, Structure: FixedLimit,
		IsStud: true, Streets: studStreets,
		Low: LowAceToFive, Lo8Split: true,
	},
	Razz: {
		Variant: Razz, Name: "Razz",
		HandSize: 5, Structure: FixedLimit,
		IsStud: true, Streets: studStreets,
		Low: LowAceToFive, LowOnly: true,
	},
	Deuce: {
		Variant: Deuce, Name: "2-7 Triple Draw",
		HoleCards: 5, HandSize: 5, Structure: FixedLimit,
		HasButton: true, IsDraw: true, MaxDraw: 5, Streets: drawStreets,
		Low: LowDeuceToSeven, LowOnly: true,
	},
	Badugi: {
		Variant: Badugi, Name: "Badugi",
		HoleCards: 4, HandSize: 4, Structure: FixedLimit,
		HasButton: true, IsDraw: true, MaxDraw: 4, Streets: drawStreets,
		Low: LowBadugi, LowOnly: true,
	},
	OFC: {
		Variant: OFC, Name: "Open Face Chinese",
		HasButton: true,
	},
}

// LookupRules returns the rule set for a variant
func LookupRules(v Variant) (Rules, bool) {
	r, ok := variantRules[v]
	return r, ok
}

// Variants lists every supported variant name
func Variants() []Variant {
	return []Variant{NLH, PLO, PLO8, Stud, Stud8, Razz, Deuce, Badugi, OFC}
}

// IsValidVariant reports whether a wire name maps to a supported variant
func IsValidVariant(v Variant) bool {
	_, ok := variantRules[v]
	return ok
}

// lateStreet reports whether a betting round uses the doubled fixed bet:
// turn and river, fifth street onward, or after the second draw.
func (r Rules) lateStreet(i int) bool {
	return i >= 2
}
