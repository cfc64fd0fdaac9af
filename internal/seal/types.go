package seal

// #region state
// State enumerates the seal eligibility outcomes.
type State string

const (
	StandardAllowed     State = "STANDARD_ALLOWED"
	ReinforcedRequired  State = "REINFORCED_REQUIRED"
	SpecializedRequired State = "SPECIALIZED_REQUIRED"
	SeallessRequired    State = "SEALLESS_REQUIRED"
	Suppressed          State = "SEAL_SELECTION_SUPPRESSED"
)

// States returns all five states.
func States() []State {
	return []State{StandardAllowed, ReinforcedRequired, SpecializedRequired, SeallessRequired, Suppressed}
}

// #endregion state

// #region category
// Category is an admissible seal family.
type Category string

const (
	Single               Category = "Single"
	Double               Category = "Double"
	Cartridge            Category = "Cartridge"
	MagneticDrive        Category = "Magnetic Drive"
	CannedMotor          Category = "Canned Motor"
	SpecializedCartridge Category = "Specialized Cartridge"
	OEMEngineered        Category = "OEM Engineered"
)

// #endregion category

// #region eligibility
// Eligibility is the resolver output.
type Eligibility struct {
	State             State      `json:"state"`
	Reason            string     `json:"reason"`
	AllowedCategories []Category `json:"allowed_categories"`
}

// Allows reports whether c is an admissible category.
func (e Eligibility) Allows(c Category) bool {
	for _, x := range e.AllowedCategories {
		if x == c {
			return true
		}
	}
	return false
}

// #endregion eligibility
