package application

import "strconv"

// Page describes the window a paginated result was cut from.
type Page struct {
	Number   int `json:"page"`
	NumPages int `json:"num_pages"`
	Size     int `json:"page_size"`
	Total    int `json:"total"`
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// paginate clamps requested into [1, numPages]. An empty result still has
// one (empty) page.
func paginate(total, size, requested int) Page {
	numPages := (total + size - 1) / size
	if numPages < 1 {
		numPages = 1
	}
	switch {
	case requested < 1:
		requested = 1
	case requested > numPages:
		requested = numPages
	}
	return Page{Number: requested, NumPages: numPages, Size: size, Total: total}
}

// parsePage reads a page number, treating anything unparsable as page 1.
func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}
