package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrylevesque/emailforms/internal/templates"
)

// AppName is appended to every window title.
const AppName = "Email Form System"

// Level is a notification or status severity.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
	LevelPending
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelPending:
		return "pending"
	default:
		return "info"
	}
}

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Path   string
	Title  string
	Active bool
}

// Frame is one full screen: a page's content plus, for signed-in users,
// the surrounding chrome (header and navigation).
type Frame struct {
	Title     string
	Path      string
	Content   string
	Chrome    bool
	UserName  string
	UserEmail string
	Nav       []NavLink
}

type Renderer interface {
	RenderFrame(f Frame)
}

type Notifier interface {
	Notify(level Level, message string)
}

// Terminal renders frames and notifications to a writer. It is safe for
// concurrent use.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	tmpl   *templates.Set
	styles Styles
	title  string
}

func NewTerminal(out io.Writer, tmpl *templates.Set) *Terminal {
	return &Terminal{
		out:    out,
		tmpl:   tmpl,
		styles: NewStyles(lipgloss.NewRenderer(out)),
	}
}

// Title returns the last rendered window title.
func (t *Terminal) Title() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.title
}

func (t *Terminal) RenderFrame(f Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.title = fmt.Sprintf("%s - %s", f.Title, AppName)
	body := f.Content
	if f.Chrome {
		userName := f.UserName
		if userName == "" {
			userName = "User"
		}
		out, err := t.tmpl.Render("base", templates.Data{
			"userName":  userName,
			"userEmail": f.UserEmail,
			"nav":       t.nav(f.Nav),
			"content":   f.Content,
		})
		if err == nil {
			body = out
		}
	}
	fmt.Fprintln(t.out, t.styles.Header.Render(t.title))
	fmt.Fprintln(t.out, t.styles.Content.Render(body))
}

func (t *Terminal) nav(links []NavLink) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		if l.Active {
			parts = append(parts, t.styles.NavActive.Render(l.Title))
		} else {
			parts = append(parts, t.styles.NavLink.Render(l.Title))
		}
	}
	return strings.Join(parts, t.styles.Muted.Render("|"))
}

func (t *Terminal) Notify(level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, t.styles.Toast[level].Render(levelIcon(level)+" "+message))
}

// Badge renders a status label colored by its StatusLevel.
func (t *Terminal) Badge(status string) string {
	return t.styles.Badge[StatusLevel(status)].Render(status)
}

func levelIcon(l Level) string {
	switch l {
	case LevelSuccess:
		return "✔"
	case LevelError:
		return "✖"
	case LevelWarning:
		return "!"
	default:
		return "i"
	}
}
