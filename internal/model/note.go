package model

import "time"

// UntitledNote is the title given to a note saved with a blank title.
const UntitledNote = "Untitled Note"

// PreviewLength is how many characters of a note's content the list view
// shows under its title.
const PreviewLength = 100

// Note is a free-form text note. LastModified is refreshed on every save and
// is never earlier than CreatedAt.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// Preview returns the first PreviewLength characters of the content.
// Characters are counted as runes so a preview never splits a multi-byte
// character.
func (n Note) Preview() string {
	r := []rune(n.Content)
	if len(r) <= PreviewLength {
		return n.Content
	}
	return string(r[:PreviewLength])
}
