package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/c-hri-sw-u/PalPal/internal/config"
	"github.com/c-hri-sw-u/PalPal/internal/onboarding"
	"github.com/c-hri-sw-u/PalPal/internal/pal"
	"github.com/c-hri-sw-u/PalPal/internal/secrets"
	"github.com/c-hri-sw-u/PalPal/internal/service"
)

// App ties together screens.
type App struct {
	ctx      context.Context
	cfg      config.Config
	services Services
	state    screen
	status   string
	busy     bool // one outstanding network call at a time
	user     *pal.User

	// auth
	authMode  authMode
	authField int // 0 email, 1 password
	email     string
	password  string

	// home
	pals       []pal.Pal
	palCursor  int
	keyEditing bool
	keyInput   string

	// onboarding
	wizard       *onboarding.Wizard
	wizardRun    int
	nameInput    string
	pathInput    string
	capturedPath string
	mbtiInput    string
	mbtiCursor   int
	traitCursor  int
	textInput    string

	// chat
	activePal *pal.Pal
	messages  []pal.Message
	chatInput string

	// feed
	posts []pal.Post
}

type Services struct {
	Auth       *service.AuthService
	Profile    *service.ProfileService
	Pals       *service.PalService
	Onboarding *service.OnboardingService
	Chat       *service.ChatService
	Feed       *service.FeedService
}

type screen string

const (
	screenAuth   screen = "auth"
	screenHome   screen = "home"
	screenWizard screen = "wizard"
	screenChat   screen = "chat"
	screenFeed   screen = "feed"
)

type authMode string

const (
	authSignIn authMode = "sign in"
	authSignUp authMode = "sign up"
)

func New(ctx context.Context, cfg config.Config, services Services) *App {
	return &App{
		ctx:      ctx,
		cfg:      cfg,
		services: services,
		state:    screenAuth,
		authMode: authSignIn,
	}
}

func (a *App) Init() tea.Cmd {
	return a.restoreCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.busy {
			return a, nil // inputs disabled while a call is outstanding
		}
		switch a.state {
		case screenAuth:
			return a.handleAuthKey(m)
		case screenHome:
			return a.handleHomeKey(m)
		case screenWizard:
			return a.handleWizardKey(m)
		case screenChat:
			return a.handleChatKey(m)
		case screenFeed:
			return a.handleFeedKey(m)
		}

	case signedInMsg:
		a.busy = false
		u := pal.User(m)
		a.user = &u
		a.state = screenHome
		a.status = ""
		a.busy = true
		return a, a.loadPalsCmd()
	case noSessionMsg:
		a.busy = false
		a.state = screenAuth
	case signedOutMsg:
		a.busy = false
		a.user = nil
		a.pals = nil
		a.activePal = nil
		a.state = screenAuth
		a.status = ""
	case palsMsg:
		a.busy = false
		a.pals = []pal.Pal(m)
		if a.palCursor >= len(a.pals) {
			a.palCursor = 0
		}
	case profileMsg:
		// background generation finished; install only into the run that
		// requested it, a cancelled run's result is dropped
		if m.run == a.wizardRun && a.wizard != nil && a.wizard.Profile() == nil {
			a.wizard.SetProfile(m.profile)
		}
	case rerolledMsg:
		a.busy = false
		if a.wizard != nil {
			if err := a.wizard.Reroll(pal.GeneratedProfile(m)); err == nil {
				a.status = "profile re-rolled"
			}
		}
	case palCreatedMsg:
		a.busy = false
		if a.wizard != nil {
			_ = a.wizard.Complete()
		}
		a.wizard = nil
		created := pal.Pal(m)
		a.pals = append([]pal.Pal{created}, a.pals...)
		a.state = screenHome
		a.status = created.Name + " is ready!"
	case messagesMsg:
		a.busy = false
		a.messages = []pal.Message(m)
	case sentMsg:
		a.busy = false
		a.messages = append(a.messages, m.user, m.reply)
		a.chatInput = ""
	case postsMsg:
		a.busy = false
		a.posts = []pal.Post(m)
	case statusMsg:
		a.busy = false
		a.status = string(m)
	case errMsg:
		a.busy = false
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	switch a.state {
	case screenHome:
		body = a.renderHome()
	case screenWizard:
		body = a.renderWizard()
	case screenChat:
		body = a.renderChat()
	case screenFeed:
		body = a.renderFeed()
	default:
		body = a.renderAuth()
	}
	if a.busy {
		body += "\n" + subtleStyle.Render("working...")
	}
	return body
}

// commands

func (a *App) restoreCmd() tea.Cmd {
	a.busy = true
	return func() tea.Msg {
		user, err := a.services.Auth.Restore(a.ctx)
		if err != nil {
			return noSessionMsg{}
		}
		return signedInMsg(user)
	}
}

func (a *App) signInCmd(email, password string) tea.Cmd {
	mode := a.authMode
	return func() tea.Msg {
		var (
			user pal.User
			err  error
		)
		if mode == authSignUp {
			user, err = a.services.Auth.SignUp(a.ctx, email, password)
			if errors.Is(err, service.ErrConfirmationRequired) {
				return statusMsg("check your email to confirm the account")
			}
		} else {
			user, err = a.services.Auth.SignIn(a.ctx, email, password)
		}
		if err != nil {
			return errMsg{err}
		}
		return signedInMsg(user)
	}
}

func (a *App) signOutCmd() tea.Cmd {
	return func() tea.Msg {
		_ = a.services.Auth.SignOut(a.ctx)
		return signedOutMsg{}
	}
}

func (a *App) loadPalsCmd() tea.Cmd {
	return func() tea.Msg {
		if a.user == nil {
			return palsMsg(nil)
		}
		pals, err := a.services.Pals.ListPals(a.ctx, a.user.ID)
		if err != nil {
			return errMsg{err}
		}
		return palsMsg(pals)
	}
}

// generateProfileCmd runs in the background while photos are captured; the
// result is installed when it lands. Generation never errors.
func (a *App) generateProfileCmd(run int, name string) tea.Cmd {
	return func() tea.Msg {
		return profileMsg{run: run, profile: a.services.Profile.Generate(a.ctx, name)}
	}
}

func (a *App) rerollCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return rerolledMsg(a.services.Profile.Generate(a.ctx, name))
	}
}

func (a *App) finalizeCmd(sub onboarding.Submission) tea.Cmd {
	return func() tea.Msg {
		if a.user == nil {
			return errMsg{errors.New("not signed in")}
		}
		created, err := a.services.Onboarding.Finalize(a.ctx, a.user.ID, sub)
		if err != nil {
			return errMsg{err}
		}
		return palCreatedMsg(created)
	}
}

func (a *App) loadMessagesCmd(palID string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := a.services.Chat.History(a.ctx, palID)
		if err != nil {
			return errMsg{err}
		}
		return messagesMsg(msgs)
	}
}

func (a *App) sendCmd(p pal.Pal, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.services.Chat.Send(a.ctx, p, text)
		if err != nil {
			return errMsg{err}
		}
		user := pal.Message{PalID: p.ID, Role: "user", Content: text}
		return sentMsg{user: user, reply: reply}
	}
}

func (a *App) loadFeedCmd() tea.Cmd {
	return func() tea.Msg {
		posts, err := a.services.Feed.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return postsMsg(posts)
	}
}

// key handlers

func (a *App) handleAuthKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "tab":
		a.authField = (a.authField + 1) % 2
		return a, nil
	case "ctrl+t":
		if a.authMode == authSignIn {
			a.authMode = authSignUp
		} else {
			a.authMode = authSignIn
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyEnter:
		if a.authField == 0 {
			a.authField = 1
			return a, nil
		}
		email := strings.TrimSpace(a.email)
		if email == "" || a.password == "" {
			a.status = "enter email and password"
			return a, nil
		}
		a.status = ""
		a.busy = true
		return a, a.signInCmd(email, a.password)
	case tea.KeyBackspace, tea.KeyCtrlH:
		field := a.fieldRef()
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
	case tea.KeySpace:
		*a.fieldRef() += " "
	case tea.KeyRunes:
		*a.fieldRef() += string(m.Runes)
	}
	return a, nil
}

func (a *App) fieldRef() *string {
	if a.authField == 0 {
		return &a.email
	}
	return &a.password
}

func (a *App) handleHomeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.keyEditing {
		return a.handleKeyEditor(m)
	}
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "a":
		a.keyEditing = true
		a.keyInput = ""
		a.status = ""
	case "up", "k":
		if a.palCursor > 0 {
			a.palCursor--
		}
	case "down", "j":
		if a.palCursor < len(a.pals)-1 {
			a.palCursor++
		}
	case "n":
		a.startWizard()
	case "f":
		a.state = screenFeed
		a.status = ""
		a.busy = true
		return a, a.loadFeedCmd()
	case "r":
		a.busy = true
		return a, a.loadPalsCmd()
	case "o":
		a.busy = true
		return a, a.signOutCmd()
	case "enter":
		if len(a.pals) == 0 {
			return a, nil
		}
		p := a.pals[a.palCursor]
		a.activePal = &p
		a.messages = nil
		a.chatInput = ""
		a.state = screenChat
		a.status = ""
		a.busy = true
		return a, tea.Batch(
			a.loadMessagesCmd(p.ID),
			func() tea.Msg { _ = a.services.Pals.SetActivePal(a.ctx, p.ID); return nil },
		)
	}
	return a, nil
}

func (a *App) handleKeyEditor(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.keyEditing = false
		a.keyInput = ""
	case tea.KeyEnter:
		key := strings.TrimSpace(a.keyInput)
		if key == "" {
			a.status = "enter a key"
			return a, nil
		}
		a.keyEditing = false
		a.keyInput = ""
		a.busy = true
		return a, a.saveKeyCmd(key)
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.keyInput) > 0 {
			a.keyInput = a.keyInput[:len(a.keyInput)-1]
		}
	case tea.KeyRunes:
		a.keyInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) saveKeyCmd(key string) tea.Cmd {
	return func() tea.Msg {
		if err := secrets.StoreAPIKey(key); err != nil {
			return errMsg{err}
		}
		return statusMsg("API key saved (restart to apply)")
	}
}

func (a *App) handleChatKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.state = screenHome
		a.status = ""
		return a, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(a.chatInput)
		if text == "" || a.activePal == nil {
			return a, nil
		}
		a.busy = true
		return a, a.sendCmd(*a.activePal, text)
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.chatInput) > 0 {
			a.chatInput = a.chatInput[:len(a.chatInput)-1]
		}
	case tea.KeySpace:
		a.chatInput += " "
	case tea.KeyRunes:
		a.chatInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleFeedKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "esc", "h":
		a.state = screenHome
		a.status = ""
	case "r":
		a.busy = true
		return a, a.loadFeedCmd()
	}
	return a, nil
}

// rendering

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	subtleStyle = lipgloss.NewStyle().Faint(true)
)

func (a *App) renderAuth() string {
	title := titleStyle.Render("PalPal " + string(a.authMode))
	emailMarker, passMarker := " ", " "
	if a.authField == 0 {
		emailMarker = "▶"
	} else {
		passMarker = "▶"
	}
	body := fmt.Sprintf("%s Email:    %s\n%s Password: %s",
		emailMarker, a.email, passMarker, strings.Repeat("*", len(a.password)))
	body += fmt.Sprintf("\n[enter] %s  [tab] Switch field  [ctrl+t] Toggle sign in/up  [q] Quit", a.authMode)
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderHome() string {
	name := ""
	if a.user != nil {
		name = " - " + a.user.Username
	}
	title := titleStyle.Render("Your Pals" + name)
	out := title + "\n"
	if len(a.pals) == 0 {
		out += "No Pals Yet\nCreate your first pal to start chatting.\n"
	} else {
		for i, p := range a.pals {
			marker := " "
			if i == a.palCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %-20s %s\n", marker, p.Name, subtleStyle.Render(p.MBTI))
		}
	}
	if a.keyEditing {
		out += fmt.Sprintf("AI API key: %s\n[enter] Save  [esc] Cancel\n", strings.Repeat("*", len(a.keyInput)))
	}
	out += "[enter] Chat  [n] New pal  [f] Feed  [r] Refresh  [a] Set API key  [o] Sign out  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderChat() string {
	name := "Chat"
	if a.activePal != nil {
		name = a.activePal.Name
	}
	title := titleStyle.Render(name)
	out := title + "\n"
	if len(a.messages) == 0 {
		out += subtleStyle.Render("(no messages yet, say hi)") + "\n"
	}
	for _, msg := range a.messages {
		who := "you"
		if msg.Role == "assistant" {
			who = name
		}
		out += fmt.Sprintf("%s: %s\n", who, msg.Content)
	}
	out += fmt.Sprintf("\n> %s\n[enter] Send  [esc] Back", a.chatInput)
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderFeed() string {
	title := titleStyle.Render("Feed")
	out := title + "\n"
	if len(a.posts) == 0 {
		out += "Nothing here yet.\n"
	}
	for _, p := range a.posts {
		out += fmt.Sprintf("- %s  %s\n", p.Content, subtleStyle.Render(fmt.Sprintf("♥ %d  💬 %d", p.LikesCount, p.CommentsCount)))
	}
	out += "[r] Refresh  [esc] Back  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

// messages

type signedInMsg pal.User

type noSessionMsg struct{}

type signedOutMsg struct{}

type palsMsg []pal.Pal

type profileMsg struct {
	run     int
	profile pal.GeneratedProfile
}

type rerolledMsg pal.GeneratedProfile

type palCreatedMsg pal.Pal

type messagesMsg []pal.Message

type sentMsg struct {
	user  pal.Message
	reply pal.Message
}

type postsMsg []pal.Post

type statusMsg string

type errMsg struct{ error }
