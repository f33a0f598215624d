package templates

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/techbeat/internal/core"
	"github.com/JonMunkholm/techbeat/internal/grid"
)

// columnCount is the checkbox, six data columns and the actions column.
const columnCount = 8

// displayDateLayout matches a US locale short date.
const displayDateLayout = "1/2/2006"

var numbers = message.NewPrinter(language.English)

// GridPage renders the full data grid page.
func GridPage(snap core.Snapshot) templ.Component {
	return Layout("Data Grid", GridPartial(snap))
}

func apiPath(viewID string, parts ...string) string {
	p := "/api/grids/" + viewID
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// GridPartial renders the grid container. HTMX swaps it after every
// interaction. While loading it polls the page URL until rows arrive.
func GridPartial(snap core.Snapshot) templ.Component {
	return component(func(ctx context.Context, hw *writer) {
		hw.raw(`<section id="grid"`)
		hw.attr("data-view-id", snap.ID)
		hw.attr("data-status", string(snap.Status))
		hw.attr("hx-target", "#grid")
		hw.attr("hx-swap", "outerHTML")
		if snap.Loading() {
			hw.attr("hx-get", "/grid/"+snap.ID)
			hw.attr("hx-trigger", "load delay:300ms")
		}
		hw.raw(">")

		toolbar(hw, snap)

		hw.raw(`<table data-testid="user-grid"><thead><tr><th>`)
		hw.raw(`<input type="checkbox" data-testid="select-all" aria-label="Select all on page"`)
		hw.attr("hx-post", apiPath(snap.ID, "select-page"))
		hw.flag("checked", snap.AllOnPageSelected)
		hw.flag("disabled", snap.Status != core.ViewReady)
		hw.raw("></th>")
		for _, f := range grid.Fields {
			header(hw, snap, f)
		}
		hw.raw("<th></th></tr></thead><tbody>")

		switch {
		case snap.Loading():
			skeletonRows(hw)
		case snap.Status == core.ViewFailed:
			hw.raw(`<tr><td colspan="`, strconv.Itoa(columnCount), `" role="alert" data-testid="grid-error">Error: `)
			hw.text(snap.Error)
			hw.raw("</td></tr>")
		case len(snap.Page.Rows) == 0:
			hw.raw(`<tr><td colspan="`, strconv.Itoa(columnCount), `" data-testid="grid-empty">No users found</td></tr>`)
		default:
			selected := make(map[int]bool, len(snap.Selected))
			for _, id := range snap.Selected {
				selected[id] = true
			}
			for _, r := range snap.Page.Rows {
				row(hw, snap, r, selected[r.ID])
			}
		}
		hw.raw("</tbody></table>")

		footer(hw, snap)
		hw.raw("</section>")
	})
}

// toolbar is swapped along with the rest of #grid. Its controls carry
// stable ids so htmx restores focus and caret position after each swap.
func toolbar(hw *writer, snap core.Snapshot) {
	q := snap.State.Query
	hw.raw(`<form class="toolbar"`)
	hw.attr("hx-put", apiPath(snap.ID, "query"))
	hw.attr("hx-trigger", "input changed delay:200ms, change")
	hw.raw(`><input type="search" id="search-input" name="search" placeholder="Search users..." data-testid="search-input" autocomplete="off"`)
	hw.attr("value", q.Search)
	hw.raw(">")

	roles := make([]string, 0, len(grid.Roles)+1)
	roles = append(roles, grid.FilterAll)
	for _, r := range grid.Roles {
		roles = append(roles, string(r))
	}
	selectBox(hw, "role", "role-filter", "Filter by role", roles, q.Role)

	statuses := make([]string, 0, len(grid.Statuses)+1)
	statuses = append(statuses, grid.FilterAll)
	for _, s := range grid.Statuses {
		statuses = append(statuses, string(s))
	}
	selectBox(hw, "status", "status-filter", "Filter by status", statuses, q.Status)
	hw.raw("</form>")

	hw.raw(`<div class="toolbar">`)
	if snap.Status == core.ViewReady {
		hw.raw(`<a data-testid="export-button" download`)
		hw.attr("href", apiPath(snap.ID, "export"))
		hw.raw(">Export</a>")
	} else {
		hw.raw(`<button type="button" data-testid="export-button" disabled>Export</button>`)
	}
	hw.raw(`<span data-testid="selected-count">`)
	hw.text(fmt.Sprintf("%d selected", len(snap.Selected)))
	hw.raw("</span></div>")
}

func selectBox(hw *writer, name, testID, label string, options []string, current string) {
	hw.raw("<select")
	hw.attr("id", testID)
	hw.attr("name", name)
	hw.attr("data-testid", testID)
	hw.attr("aria-label", label)
	hw.raw(">")
	for _, opt := range options {
		hw.raw("<option")
		hw.attr("value", opt)
		hw.flag("selected", opt == current)
		hw.raw(">")
		hw.text(opt)
		hw.raw("</option>")
	}
	hw.raw("</select>")
}

func header(hw *writer, snap core.Snapshot, f grid.Field) {
	hw.raw(`<th class="sortable"`)
	hw.attr("data-testid", "sort-"+string(f))
	hw.attr("hx-post", apiPath(snap.ID, "sort", string(f)))
	if snap.State.Sort.Key == f {
		dir := "ascending"
		if snap.State.Sort.Dir == grid.Desc {
			dir = "descending"
		}
		hw.attr("aria-sort", dir)
	}
	hw.raw(">")
	hw.text(f.Label())
	if snap.State.Sort.Key == f {
		if snap.State.Sort.Dir == grid.Desc {
			hw.raw(" &#9660;")
		} else {
			hw.raw(" &#9650;")
		}
	}
	hw.raw("</th>")
}

func skeletonRows(hw *writer) {
	for i := 0; i < grid.PageSize; i++ {
		hw.raw(`<tr data-testid="skeleton-row">`)
		for j := 0; j < columnCount; j++ {
			hw.raw(`<td><div class="skeleton"></div></td>`)
		}
		hw.raw("</tr>")
	}
}

func row(hw *writer, snap core.Snapshot, r grid.Row, selected bool) {
	id := strconv.Itoa(r.ID)

	hw.raw("<tr")
	hw.attr("data-testid", "user-row-"+id)
	if selected {
		hw.attr("class", "selected")
	}
	hw.raw(`><td><input type="checkbox"`)
	hw.attr("aria-label", "Select row "+id)
	hw.attr("hx-post", apiPath(snap.ID, "rows", id, "select"))
	hw.flag("checked", selected)
	hw.raw("></td><td>", id, "</td>")

	editableCell(hw, snap, r, grid.FieldName, r.Name)
	editableCell(hw, snap, r, grid.FieldEmail, r.Email)

	hw.raw("<td>")
	hw.text(string(r.Role))
	hw.raw("</td><td>")
	hw.text(string(r.Status))
	hw.raw("</td><td><time")
	hw.attr("datetime", grid.FormatTimestamp(r.LastActive))
	hw.attr("title", timeago.English.Format(r.LastActive))
	hw.raw(">")
	hw.text(r.LastActive.In(time.UTC).Format(displayDateLayout))
	hw.raw("</time></td>")

	hw.raw("<td><details")
	hw.attr("data-testid", "actions-"+id)
	hw.raw("><summary aria-label=\"Row actions\">&hellip;</summary>")
	hw.raw(`<button type="button"`)
	hw.attr("hx-post", apiPath(snap.ID, "edit"))
	hw.attr("hx-vals", fmt.Sprintf(`{"id":%d,"field":%q}`, r.ID, grid.FieldName))
	hw.raw(">Edit</button>")
	hw.raw(`<button type="button" class="destructive"`)
	hw.attr("hx-delete", apiPath(snap.ID, "rows", id))
	hw.raw(">Delete</button></details></td></tr>")
}

func editableCell(hw *writer, snap core.Snapshot, r grid.Row, f grid.Field, value string) {
	editing := snap.Editing != nil && snap.Editing.ID == r.ID && snap.Editing.Field == f
	if !editing {
		hw.raw(`<td class="editable"`)
		hw.attr("hx-post", apiPath(snap.ID, "edit"))
		hw.attr("hx-vals", fmt.Sprintf(`{"id":%d,"field":%q}`, r.ID, f))
		hw.raw(">")
		hw.text(value)
		hw.raw("</td>")
		return
	}

	// Each keystroke is stored as typed; Enter or leaving the field ends the edit.
	hw.raw("<td><form")
	hw.attr("hx-post", apiPath(snap.ID, "edit", "commit"))
	hw.attr("hx-trigger", "submit, focusout")
	hw.raw(`><input name="value" autofocus`)
	hw.attr("data-testid", fmt.Sprintf("edit-%s-%d", f, r.ID))
	hw.attr("value", value)
	hw.attr("hx-put", apiPath(snap.ID, "edit"))
	hw.attr("hx-trigger", "input changed")
	hw.attr("hx-swap", "none")
	hw.raw("></form></td>")
}

func footer(hw *writer, snap core.Snapshot) {
	p := snap.Page
	hw.raw(`<div class="footer"><div data-testid="page-summary">`)
	hw.text(numbers.Sprintf("Showing %d to %d of %d entries", p.From, p.To, p.Total))
	hw.raw(`</div><div><button type="button" data-testid="prev-page"`)
	hw.attr("hx-post", apiPath(snap.ID, "prev"))
	hw.flag("disabled", !p.HasPrev)
	hw.raw(">Previous</button>")
	hw.raw(`<span data-testid="page-indicator">`)
	hw.text(fmt.Sprintf("Page %d of %d", p.Page, p.TotalPages))
	hw.raw(`</span><button type="button" data-testid="next-page"`)
	hw.attr("hx-post", apiPath(snap.ID, "next"))
	hw.flag("disabled", !p.HasNext)
	hw.raw(">Next</button></div></div>")
}
