package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaleido/internal/client"
	"kaleido/internal/search"
)

var (
	questionShortStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	answeredStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	priceStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	refineStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	selectedStyle      = lipgloss.NewStyle().Bold(true).BorderLeft(true).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("#5B8DEF")).PaddingLeft(1)
	productStyle = lipgloss.NewStyle().PaddingLeft(2)
)

type evaluationMsg struct {
	eval *client.QueryEvaluation
	err  error
}

type recommendationsMsg struct {
	products []client.Product
	err      error
}

type summariesMsg struct {
	summaries map[int]string
	err       error
}

type bookmarkToggledMsg struct {
	productID int
	saved     bool
	err       error
}

// msgError extracts the failure carried by a thread/bookmark message so the
// app can route token expiry centrally.
func msgError(msg tea.Msg) error {
	switch m := msg.(type) {
	case evaluationMsg:
		return m.err
	case recommendationsMsg:
		return m.err
	case summariesMsg:
		return m.err
	case bookmarkToggledMsg:
		return m.err
	case bookmarksLoadedMsg:
		return m.err
	case bookmarkRemovedMsg:
		return m.err
	}
	return nil
}

// questionField is one rendered clarifying question with its input.
type questionField struct {
	id       int
	short    string
	long     string
	answered bool
	input    textinput.Model
}

// threadView is the active search screen: query input, clarifying question
// inputs, and ranked recommendations. It owns one search.Session and one
// summary cache; both are discarded when the view closes.
type threadView struct {
	app       *App
	session   *search.Session
	summaries *search.SummaryCache

	searchInput textinput.Model
	questions   []questionField
	focus       int // 0 = search input, 1..len(questions) = questions, len+1 = products
	products    []client.Product
	productSel  int
	summaryText map[int]string
	bookmarked  map[int]bool

	width           int
	fetchingRecs    bool
	recsLoaded      bool
	needsRefinement bool
	errText         string
}

func newThreadView(a *App) *threadView {
	input := textinput.New()
	input.Placeholder = "Search..."
	input.Focus()

	session := search.NewSession(a.client.Threads)
	session.SetRerank(a.config.File.Search.Rerank)

	return &threadView{
		app:     a,
		session: session,
		summaries: search.NewSummaryCache(
			a.client.Products,
			a.config.File.Search.SummaryCacheCap,
			a.config.File.Search.SummaryLength,
		),
		searchInput: input,
		summaryText: map[int]string{},
		bookmarked:  map[int]bool{},
	}
}

// InitNew starts a fresh thread, optionally seeded with a query.
func (v *threadView) InitNew(query string) tea.Cmd {
	v.searchInput.SetValue(query)
	return func() tea.Msg {
		eval, err := v.session.Start(context.Background(), query)
		return evaluationMsg{eval: eval, err: err}
	}
}

// InitResume reopens an existing thread.
func (v *threadView) InitResume(tid int) tea.Cmd {
	return func() tea.Msg {
		eval, err := v.session.Resume(context.Background(), tid)
		return evaluationMsg{eval: eval, err: err}
	}
}

func (v *threadView) setSize(width, height int) {
	v.width = width
	inner := max(20, width-10)
	v.searchInput.Width = inner
	for i := range v.questions {
		v.questions[i].input.Width = max(16, inner-24)
	}
}

func (v *threadView) busy() bool {
	return v.session.Busy() || v.fetchingRecs
}

// Update handles one message; the App routes both keys and async results here.
func (v *threadView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case evaluationMsg:
		return v.handleEvaluation(m)
	case recommendationsMsg:
		return v.handleRecommendations(m)
	case summariesMsg:
		if m.err != nil {
			// Summaries are decoration; keep the plain descriptions.
			v.app.logError("Summaries unavailable: %v", m.err)
			return nil
		}
		for id, summary := range m.summaries {
			v.summaryText[id] = summary
		}
		return nil
	case bookmarkToggledMsg:
		if m.err != nil {
			v.app.statusMsg = fmt.Sprintf("Bookmark failed: %v", m.err)
			return nil
		}
		v.bookmarked[m.productID] = m.saved
		return nil
	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return v.updateFocusedInput(msg)
}

func (v *threadView) handleEvaluation(msg evaluationMsg) tea.Cmd {
	if msg.err != nil {
		if client.IsValidation(msg.err) {
			// Drafts are preserved; the user adjusts and resubmits.
			v.needsRefinement = true
			v.app.statusMsg = "Your search needs refinement"
			v.app.logInfo("Submission rejected, refinement needed")
			return nil
		}
		v.errText = msg.err.Error()
		v.app.logError("Submission failed: %v", msg.err)
		return nil
	}

	v.errText = ""
	v.needsRefinement = !msg.eval.Valid
	v.rebuildQuestions()
	if v.searchInput.Value() == "" {
		v.searchInput.SetValue(v.session.LastQuery())
	}
	v.app.statusMsg = ""
	if msg.eval.Valid {
		return v.fetchRecommendations()
	}
	return nil
}

// rebuildQuestions regenerates the question inputs from the canonical
// evaluation: answered questions first (prefilled with their submitted
// answer), then open follow-ups. The session already deduplicated the lists.
func (v *threadView) rebuildQuestions() {
	eval := v.session.Evaluation()
	if eval == nil {
		v.questions = nil
		return
	}
	fields := make([]questionField, 0, len(eval.AnsweredQuestions)+len(eval.FollowUpQuestions))
	for _, q := range eval.AnsweredQuestions {
		fields = append(fields, v.newQuestionField(q.ID, q.Short, q.Long, q.Answer, true))
	}
	for _, q := range eval.FollowUpQuestions {
		fields = append(fields, v.newQuestionField(q.ID, q.Short, q.Long, "", false))
	}
	v.questions = fields
	v.setFocus(0)
	v.setSize(v.width, 0)
}

func (v *threadView) newQuestionField(id int, short, long, answer string, answered bool) questionField {
	input := textinput.New()
	input.Placeholder = long
	if pending, ok := v.session.PendingAnswer(id); ok {
		input.SetValue(pending)
	} else {
		input.SetValue(answer)
	}
	return questionField{id: id, short: short, long: long, answered: answered, input: input}
}

func (v *threadView) handleRecommendations(msg recommendationsMsg) tea.Cmd {
	v.fetchingRecs = false
	if msg.err != nil {
		if client.IsValidation(msg.err) {
			v.needsRefinement = true
			v.app.statusMsg = "Your search needs refinement"
			return nil
		}
		v.errText = msg.err.Error()
		return nil
	}
	v.recsLoaded = true
	v.products = msg.products
	v.productSel = 0
	if len(msg.products) == 0 {
		return nil
	}
	ids := make([]int, len(msg.products))
	for i, p := range msg.products {
		ids[i] = p.ID
	}
	return func() tea.Msg {
		summaries, err := v.summaries.Ensure(context.Background(), ids)
		return summariesMsg{summaries: summaries, err: err}
	}
}

func (v *threadView) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch key {
	case "tab":
		v.setFocus(v.focus + 1)
		return nil
	case "shift+tab":
		v.setFocus(v.focus - 1)
		return nil
	case "ctrl+r":
		v.session.SetRerank(!v.session.Rerank())
		v.app.statusMsg = fmt.Sprintf("Rerank %s", onOff(v.session.Rerank()))
		if v.recsLoaded && !v.busy() {
			return v.fetchRecommendations()
		}
		return nil
	}

	if v.inProductZone() {
		switch key {
		case "up", "k":
			if v.productSel > 0 {
				v.productSel--
			}
			return nil
		case "down", "j":
			if v.productSel < len(v.products)-1 {
				v.productSel++
			}
			return nil
		case "enter", "b":
			return v.toggleBookmark()
		}
		return nil
	}

	// The busy flag doubles as the disabled-input affordance: no edits and
	// no submissions while a request is outstanding. The session's single
	// flight would absorb a duplicate anyway.
	if v.busy() {
		return nil
	}

	if key == "enter" {
		return v.submit()
	}
	return v.updateFocusedInput(msg)
}

func (v *threadView) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case v.focus == 0:
		v.searchInput, cmd = v.searchInput.Update(msg)
	case v.focus >= 1 && v.focus <= len(v.questions):
		field := &v.questions[v.focus-1]
		field.input, cmd = field.input.Update(msg)
		// Every edit lands in the draft store, which decides whether it is
		// a real change, a removal request, or a revert to the submitted
		// answer.
		v.session.SetAnswer(field.id, field.input.Value())
	}
	return cmd
}

func (v *threadView) setFocus(focus int) {
	last := len(v.questions)
	if len(v.products) > 0 {
		last++
	}
	if focus < 0 {
		focus = last
	}
	if focus > last {
		focus = 0
	}
	v.focus = focus
	if focus == 0 {
		v.searchInput.Focus()
	} else {
		v.searchInput.Blur()
	}
	for i := range v.questions {
		if focus == i+1 {
			v.questions[i].input.Focus()
		} else {
			v.questions[i].input.Blur()
		}
	}
}

func (v *threadView) inProductZone() bool {
	return v.focus == len(v.questions)+1 && len(v.products) > 0
}

func (v *threadView) submit() tea.Cmd {
	query := v.searchInput.Value()
	if strings.TrimSpace(query) == "" && !v.session.HasDrafts() {
		v.app.statusMsg = "Type something to search for"
		return nil
	}
	v.app.logInfo("Submitting search")
	return func() tea.Msg {
		eval, err := v.session.Submit(context.Background(), query)
		return evaluationMsg{eval: eval, err: err}
	}
}

func (v *threadView) fetchRecommendations() tea.Cmd {
	v.fetchingRecs = true
	return func() tea.Msg {
		products, err := v.session.Recommendations(context.Background())
		return recommendationsMsg{products: products, err: err}
	}
}

func (v *threadView) toggleBookmark() tea.Cmd {
	if len(v.products) == 0 {
		return nil
	}
	product := v.products[v.productSel]
	saved := v.bookmarked[product.ID]
	api := v.app.client.Bookmarks
	return func() tea.Msg {
		if saved {
			err := api.Remove(context.Background(), product.ID)
			return bookmarkToggledMsg{productID: product.ID, saved: false, err: err}
		}
		_, err := api.Add(context.Background(), product.ID)
		return bookmarkToggledMsg{productID: product.ID, saved: true, err: err}
	}
}

// --- Rendering ---

func (v *threadView) View() string {
	sections := []string{v.renderSearchBar()}
	if questions := v.renderQuestions(); questions != "" {
		sections = append(sections, questions)
	}
	sections = append(sections, v.renderResults())
	hint := hintStyle.Render("Tab → next field    Enter → search    Ctrl+R → rerank    Esc → back")
	sections = append(sections, hint)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *threadView) renderSearchBar() string {
	title := headerStyle.Render("⬡ KALEIDO · Search")
	rerank := fmt.Sprintf("rerank %s", onOff(v.session.Rerank()))
	bar := v.searchInput.View()
	if v.busy() {
		bar += "  " + v.app.spin.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		boxStyle.Render(bar+"\n"+hintStyle.Render(rerank)),
	)
}

func (v *threadView) renderQuestions() string {
	if len(v.questions) == 0 {
		return ""
	}
	rows := make([]string, 0, len(v.questions))
	for i, q := range v.questions {
		label := questionShortStyle.Render(q.short)
		if q.answered {
			label = answeredStyle.Render(q.short + " ✓")
		}
		row := fmt.Sprintf("%s  %s", label, q.input.View())
		if v.focus == i+1 {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return boxStyle.Render(strings.Join(rows, "\n"))
}

func (v *threadView) renderResults() string {
	switch {
	case v.errText != "":
		return errorStyle.Render("Search failed: " + v.errText)
	case v.needsRefinement:
		return refineStyle.Render("Your search needs refinement — answer the questions above or rephrase it.")
	case v.fetchingRecs:
		return v.app.spin.View() + " Finding products..."
	case v.recsLoaded && len(v.products) == 0:
		return "No products matched this search."
	case len(v.products) == 0:
		return ""
	}

	rows := make([]string, 0, len(v.products))
	for i, p := range v.products {
		rows = append(rows, v.renderProduct(p, i == v.productSel && v.inProductZone()))
	}
	return boxStyle.Render(strings.Join(rows, "\n"))
}

func (v *threadView) renderProduct(p client.Product, selected bool) string {
	marker := " "
	if v.bookmarked[p.ID] {
		marker = "★"
	}
	description := p.Description
	if summary, ok := v.summaryText[p.ID]; ok && summary != "" {
		description = summary
	}
	line1 := fmt.Sprintf("%s %s  %s", marker, p.Title, priceStyle.Render(fmt.Sprintf("$%.2f", p.Price)))
	line2 := hintStyle.Render(description)
	block := productStyle.Render(line1 + "\n" + line2)
	if selected {
		block = selectedStyle.Render(line1 + "\n" + line2)
	}
	return block
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
