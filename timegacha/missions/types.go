package missions

// Difficulty buckets mission types; each bucket maps to a fixed
// probability boost contribution. The mapping is part of the catalog
// and not user-configurable.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
)

func (d Difficulty) Boost() float64 {
	switch d {
	case DifficultyHard:
		return 0.50
	case DifficultyMedium:
		return 0.30
	default:
		return 0.10
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyHard:
		return "hard"
	case DifficultyMedium:
		return "medium"
	default:
		return "easy"
	}
}

type Type string

const (
	TypeGratitudeJournal Type = "gratitude_journal"
	TypeGoodDeed         Type = "good_deed"
	TypeMorningExercise  Type = "morning_exercise"
	TypeReading          Type = "reading"
	TypeMeditation       Type = "meditation"
	TypeFocusedStudy     Type = "focused_study"
	TypeEarlySleep       Type = "early_sleep"
	TypeHealthyDiet      Type = "healthy_diet"
)

var AllTypes = []Type{
	TypeGratitudeJournal,
	TypeGoodDeed,
	TypeMorningExercise,
	TypeReading,
	TypeMeditation,
	TypeFocusedStudy,
	TypeEarlySleep,
	TypeHealthyDiet,
}

func (t Type) Difficulty() Difficulty {
	switch t {
	case TypeFocusedStudy, TypeEarlySleep, TypeHealthyDiet:
		return DifficultyHard
	case TypeMorningExercise, TypeReading, TypeMeditation:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// Boost is the odds contribution one completion of this mission adds
// for the rest of the day.
func (t Type) Boost() float64 {
	return t.Difficulty().Boost()
}

func (t Type) Name() string {
	switch t {
	case TypeGratitudeJournal:
		return "Gratitude Journal"
	case TypeGoodDeed:
		return "Good Deed"
	case TypeMorningExercise:
		return "Morning Exercise"
	case TypeReading:
		return "Reading"
	case TypeMeditation:
		return "Meditation"
	case TypeFocusedStudy:
		return "Focused Study"
	case TypeEarlySleep:
		return "Early Sleep"
	case TypeHealthyDiet:
		return "Healthy Diet"
	default:
		return string(t)
	}
}

func (t Type) Description() string {
	switch t {
	case TypeGratitudeJournal:
		return "Write down today's reflections and keep a positive mindset"
	case TypeGoodDeed:
		return "Record one good deed you did today"
	case TypeMorningExercise:
		return "Exercise for at least 15 minutes in the morning"
	case TypeReading:
		return "Read for at least 30 minutes"
	case TypeMeditation:
		return "Meditate for 10 minutes to unwind"
	case TypeFocusedStudy:
		return "Study with full focus for at least an hour"
	case TypeEarlySleep:
		return "Be asleep before 11pm"
	case TypeHealthyDiet:
		return "Eat healthy all day, no junk food"
	default:
		return ""
	}
}

func validType(t Type) bool {
	for _, known := range AllTypes {
		if known == t {
			return true
		}
	}
	return false
}
