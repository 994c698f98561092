package model

// Todo is a single entry in a user's todo collection.
// ID is assigned by the store and is opaque to callers.
type Todo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoPatch is a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool { return p.Text == nil && p.Completed == nil }

// Apply returns t with the patch fields written over it.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// SetText builds a patch that only replaces the text.
func SetText(s string) TodoPatch { return TodoPatch{Text: &s} }

// SetCompleted builds a patch that only writes the completed flag.
func SetCompleted(b bool) TodoPatch { return TodoPatch{Completed: &b} }
