// Package edit implements inline editing of an overlay's text.
package edit

import (
	"github.com/ivlev/overlaykit/internal/input"
)

// Mode is the state of an edit session.
type Mode int

const (
	Idle Mode = iota
	Editing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Surface is the text input shown while editing.
type Surface interface {
	Focus()
	SelectAll()
}

// CommitFunc receives the draft when an edit is committed.
type CommitFunc func(content string)

// Session is the idle/editing state machine of one element. The draft is
// local until commit; the store is never written while editing.
type Session struct {
	mode    Mode
	draft   []rune
	caret   int
	anchor  int // selection is [min(anchor,caret), max(anchor,caret))
	surface Surface
	commit  CommitFunc

	// NewlineModifier held with Enter inserts a newline instead of
	// committing.
	NewlineModifier input.Modifiers
}

// New returns an idle session that reports commits to commit.
func New(commit CommitFunc) *Session {
	return &Session{commit: commit, NewlineModifier: input.ModShift}
}

// Attach sets the input surface focused on entering edit mode.
func (s *Session) Attach(surface Surface) {
	s.surface = surface
}

// Mode returns the current state.
func (s *Session) Mode() Mode { return s.mode }

// Editing reports whether the session is in edit mode.
func (s *Session) Editing() bool { return s.mode == Editing }

// Draft returns the uncommitted text. It is empty while idle.
func (s *Session) Draft() string { return string(s.draft) }

// Selection returns the selected rune range of the draft.
func (s *Session) Selection() (start, end int) {
	if s.anchor < s.caret {
		return s.anchor, s.caret
	}
	return s.caret, s.anchor
}

// Display returns what the element should show: the draft while editing,
// otherwise stored.
func (s *Session) Display(stored string) string {
	if s.mode == Editing {
		return string(s.draft)
	}
	return stored
}

// Enter starts editing with the draft seeded from current. The whole draft
// is selected so typing replaces it. Entering while already editing is a
// no-op and returns false.
func (s *Session) Enter(current string) bool {
	if s.mode == Editing {
		return false
	}
	s.mode = Editing
	s.draft = []rune(current)
	s.anchor, s.caret = 0, len(s.draft)
	if s.surface != nil {
		s.surface.Focus()
		s.surface.SelectAll()
	}
	return true
}

// SetDraft replaces the draft, as when the input surface reports a new
// value. The caret moves to the end.
func (s *Session) SetDraft(text string) {
	if s.mode != Editing {
		return
	}
	s.draft = []rune(text)
	s.anchor, s.caret = len(s.draft), len(s.draft)
}

// Insert replaces the selection with text.
func (s *Session) Insert(text string) {
	if s.mode != Editing {
		return
	}
	start, end := s.Selection()
	ins := []rune(text)
	out := make([]rune, 0, len(s.draft)-(end-start)+len(ins))
	out = append(out, s.draft[:start]...)
	out = append(out, ins...)
	out = append(out, s.draft[end:]...)
	s.draft = out
	s.caret = start + len(ins)
	s.anchor = s.caret
}

func (s *Session) backspace() {
	start, end := s.Selection()
	if start == end {
		if start == 0 {
			return
		}
		start--
	}
	s.draft = append(s.draft[:start], s.draft[end:]...)
	s.caret, s.anchor = start, start
}

func (s *Session) moveCaret(pos int, extend bool) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.draft) {
		pos = len(s.draft)
	}
	s.caret = pos
	if !extend {
		s.anchor = pos
	}
}

// HandleKey applies a key while editing and reports whether it was
// consumed. Enter commits unless the newline modifier is held, in which
// case a newline is inserted. Escape cancels.
func (s *Session) HandleKey(e input.KeyEvent) bool {
	if s.mode != Editing {
		return false
	}
	extend := e.Modifiers.Shift()
	switch e.Key {
	case input.KeyEnter:
		if s.NewlineModifier != 0 && e.Modifiers&s.NewlineModifier == s.NewlineModifier {
			s.Insert("\n")
			return true
		}
		s.Commit()
	case input.KeyEscape:
		s.Cancel()
	case input.KeyBackspace:
		s.backspace()
	case "ArrowLeft":
		s.moveCaret(s.caret-1, extend)
	case "ArrowRight":
		s.moveCaret(s.caret+1, extend)
	case "Home":
		s.moveCaret(0, extend)
	case "End":
		s.moveCaret(len(s.draft), extend)
	default:
		if e.Rune == 0 || e.Modifiers.Ctrl() || e.Modifiers.Super() {
			return false
		}
		s.Insert(string(e.Rune))
	}
	return true
}

// Blur commits, as losing focus does.
func (s *Session) Blur() {
	s.Commit()
}

// Commit writes the draft and returns to idle. The session is idle before
// the commit callback runs, so a blur raised by the callback cannot commit
// a second time.
func (s *Session) Commit() {
	if s.mode != Editing {
		return
	}
	content := string(s.draft)
	s.reset()
	if s.commit != nil {
		s.commit(content)
	}
}

// Cancel discards the draft and returns to idle without writing.
func (s *Session) Cancel() {
	if s.mode != Editing {
		return
	}
	s.reset()
}

func (s *Session) reset() {
	s.mode = Idle
	s.draft = nil
	s.caret, s.anchor = 0, 0
}
