package grid

import (
	"sort"
	"strings"
)

// Filter returns the rows that pass the search and the role/status filters,
// preserving their order. Search is a case-insensitive substring match on
// name or email; role and status match exactly unless set to FilterAll.
func Filter(rows []Row, q Query) []Row {
	q = q.Normalize()
	term := strings.ToLower(q.Search)

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Email), term) {
			continue
		}
		if q.Role != FilterAll && string(r.Role) != q.Role {
			continue
		}
		if q.Status != FilterAll && string(r.Status) != q.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortRows returns a sorted copy of rows. Equal keys fall back to id in the
// same direction, so a descending sort is the exact reverse of ascending.
func SortRows(rows []Row, s Sort) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		c := compareField(out[i], out[j], s.Key)
		if c == 0 {
			c = compareInt(out[i].ID, out[j].ID)
		}
		if s.Dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareField(a, b Row, f Field) int {
	switch f {
	case FieldName:
		return strings.Compare(a.Name, b.Name)
	case FieldEmail:
		return strings.Compare(a.Email, b.Email)
	case FieldRole:
		return strings.Compare(string(a.Role), string(b.Role))
	case FieldStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case FieldLastActive:
		return a.LastActive.Compare(b.LastActive)
	default:
		return compareInt(a.ID, b.ID)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// TotalPages returns max(1, ceil(n / PageSize)).
func TotalPages(n int) int {
	pages := (n + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage clamps page into [1, TotalPages(n)].
func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}
	if total := TotalPages(n); page > total {
		return total
	}
	return page
}

// Paginate returns the window for page over rows, clamping page first.
func Paginate(rows []Row, page int) PageResult {
	n := len(rows)
	page = ClampPage(page, n)
	totalPages := TotalPages(n)

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > n {
		end = n
	}

	window := make([]Row, end-start)
	copy(window, rows[start:end])

	res := PageResult{
		Rows:       window,
		Page:       page,
		TotalPages: totalPages,
		Total:      n,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if n > 0 {
		res.From = start + 1
		res.To = end
	}
	return res
}

// Derive runs filter, sort and paginate over rows and returns the visible
// page together with the state after page clamping.
func Derive(rows []Row, st ViewState) (PageResult, ViewState) {
	st.Query = st.Query.Normalize()
	if st.Sort.Key == "" {
		st.Sort = DefaultSort
	}

	sorted := SortRows(Filter(rows, st.Query), st.Sort)
	page := Paginate(sorted, st.Page)
	st.Page = page.Page
	return page, st
}
