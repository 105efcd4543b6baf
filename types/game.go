package types

// Game is one entry in the fixed catalog of quiz topics.
// The catalog is seeded once at startup and treated as reference data.
type Game struct {
	// ID is the unique identifier of the game.
	ID int `json:"id" db:"id"`

	// Title is the display title of the game.
	Title string `json:"title" db:"title"`

	// Emoji is the display glyph shown next to the title.
	Emoji string `json:"emoji" db:"emoji"`

	// IsQuiz distinguishes quiz-style games from other activities.
	IsQuiz bool `json:"is_quiz" db:"is_quiz"`
}
