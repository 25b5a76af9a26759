package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kaleido/internal/client"
)

type bookmarksLoadedMsg struct {
	products []client.Product
	err      error
}

type bookmarkRemovedMsg struct {
	productID int
	err       error
}

// bookmarksView lists the user's saved products and lets them prune the
// list. It is rebuilt from the backend every time it opens.
type bookmarksView struct {
	app      *App
	products []client.Product
	selected int
	loading  bool
	errText  string
}

func newBookmarksView(a *App) *bookmarksView {
	return &bookmarksView{app: a, loading: true}
}

// Init loads the bookmarks and resolves them to products in one round.
func (v *bookmarksView) Init() tea.Cmd {
	api := v.app.client
	return func() tea.Msg {
		bookmarks, err := api.Bookmarks.List(context.Background())
		if err != nil {
			return bookmarksLoadedMsg{err: err}
		}
		ids := make([]int, len(bookmarks))
		for i, b := range bookmarks {
			ids[i] = b.ProductID
		}
		if len(ids) == 0 {
			return bookmarksLoadedMsg{}
		}
		products, err := api.Products.All(context.Background(), ids)
		return bookmarksLoadedMsg{products: products, err: err}
	}
}

func (v *bookmarksView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case bookmarksLoadedMsg:
		v.loading = false
		if m.err != nil {
			v.errText = m.err.Error()
			v.app.logError("Could not load bookmarks: %v", m.err)
			return nil
		}
		v.errText = ""
		v.products = m.products
		if v.selected >= len(v.products) {
			v.selected = max(0, len(v.products)-1)
		}
		return nil

	case bookmarkRemovedMsg:
		if m.err != nil {
			v.app.statusMsg = fmt.Sprintf("Remove failed: %v", m.err)
			return nil
		}
		kept := v.products[:0]
		for _, p := range v.products {
			if p.ID != m.productID {
				kept = append(kept, p)
			}
		}
		v.products = kept
		if v.selected >= len(v.products) {
			v.selected = max(0, len(v.products)-1)
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

func (v *bookmarksView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.products)-1 {
			v.selected++
		}
	case "d", "x":
		if len(v.products) == 0 {
			return nil
		}
		productID := v.products[v.selected].ID
		api := v.app.client.Bookmarks
		return func() tea.Msg {
			err := api.Remove(context.Background(), productID)
			return bookmarkRemovedMsg{productID: productID, err: err}
		}
	}
	return nil
}

func (v *bookmarksView) View() string {
	header := headerStyle.Render("⬡ KALEIDO · Bookmarks")

	var body string
	switch {
	case v.loading:
		body = v.app.spin.View() + " Loading bookmarks..."
	case v.errText != "":
		body = errorStyle.Render("Could not load bookmarks: " + v.errText)
	case len(v.products) == 0:
		body = "Nothing saved yet. Bookmark products from a search with b."
	default:
		rows := make([]string, 0, len(v.products))
		for i, p := range v.products {
			line1 := fmt.Sprintf("★ %s  %s", p.Title, priceStyle.Render(fmt.Sprintf("$%.2f", p.Price)))
			line2 := hintStyle.Render(p.URL)
			block := productStyle.Render(line1 + "\n" + line2)
			if i == v.selected {
				block = selectedStyle.Render(line1 + "\n" + line2)
			}
			rows = append(rows, block)
		}
		body = strings.Join(rows, "\n")
	}

	hint := hintStyle.Render("↑/↓ → navigate    d → remove    Esc → back")
	return lipgloss.JoinVertical(lipgloss.Left, header, boxStyle.Render(body), hint)
}
