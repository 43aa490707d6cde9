package domain

import "time"

const (
	msgNoteTitle   = "Title is required and must be a non-empty string"
	msgNoteContent = "Content is required and must be a non-empty string"
)

// Note is a free-text note.
type Note struct {
	Record `bson:",inline"`

	Title   string `json:"title" bson:"title"`
	Content string `json:"content" bson:"content"`
}

func (n *Note) SearchFields() []string { return []string{n.Title, n.Content} }

func (n *Note) Clone() *Note {
	c := *n
	c.Record = n.Record.clone()
	return &c
}

// NewNote validates create input and returns an unsaved note.
func NewNote(ownerID string, in Fields, now time.Time) (*Note, error) {
	title, err := in.requiredString("title", msgNoteTitle)
	if err != nil {
		return nil, err
	}
	content, err := in.requiredString("content", msgNoteContent)
	if err != nil {
		return nil, err
	}
	tags, _ := in.tags().Get()
	return &Note{
		Record:  newRecord(ownerID, cloneTags(tags), now),
		Title:   title,
		Content: content,
	}, nil
}

// NotePatch is a presence-based partial update of a note.
type NotePatch struct {
	Title      Optional[string]
	Content    Optional[string]
	Tags       Optional[[]string]
	IsFavorite Optional[bool]
	UpdatedAt  time.Time
}

// NewNotePatch reads update input. Title and content may be omitted, but
// when sent they must still be non-empty strings.
func NewNotePatch(in Fields, now time.Time) (*NotePatch, error) {
	p := &NotePatch{
		Tags:       in.tags(),
		IsFavorite: in.boolean("isFavorite"),
		UpdatedAt:  now,
	}
	if _, ok := in.lookup("title"); ok {
		title, err := in.requiredString("title", msgNoteTitle)
		if err != nil {
			return nil, err
		}
		p.Title = Some(title)
	}
	if _, ok := in.lookup("content"); ok {
		content, err := in.requiredString("content", msgNoteContent)
		if err != nil {
			return nil, err
		}
		p.Content = Some(content)
	}
	return p, nil
}

func (p *NotePatch) Apply(n *Note) {
	if v, ok := p.Title.Get(); ok {
		n.Title = v
	}
	if v, ok := p.Content.Get(); ok {
		n.Content = v
	}
	if v, ok := p.Tags.Get(); ok {
		n.Tags = cloneTags(v)
	}
	if v, ok := p.IsFavorite.Get(); ok {
		n.IsFavorite = v
	}
	n.UpdatedAt = p.UpdatedAt
}

func (p *NotePatch) Changes() map[string]any {
	changes := map[string]any{"updatedAt": p.UpdatedAt}
	if v, ok := p.Title.Get(); ok {
		changes["title"] = v
	}
	if v, ok := p.Content.Get(); ok {
		changes["content"] = v
	}
	if v, ok := p.Tags.Get(); ok {
		changes["tags"] = cloneTags(v)
	}
	if v, ok := p.IsFavorite.Get(); ok {
		changes["isFavorite"] = v
	}
	return changes
}
