package directory

import "fmt"

// SortColumn is the field the displayed subset is ordered by.
type SortColumn int

const (
	SortNone SortColumn = iota
	SortByName
	SortByEmail
)

// String returns the column name used on the command line.
func (c SortColumn) String() string {
	switch c {
	case SortByName:
		return "name"
	case SortByEmail:
		return "email"
	default:
		return ""
	}
}

// ParseSortColumn maps "name", "email" or "" to a SortColumn.
func ParseSortColumn(s string) (SortColumn, error) {
	switch s {
	case "":
		return SortNone, nil
	case "name":
		return SortByName, nil
	case "email":
		return SortByEmail, nil
	default:
		return SortNone, fmt.Errorf("unknown sort column %q (valid: name, email)", s)
	}
}

// key returns the field of u selected by the column.
func (c SortColumn) key(u User) string {
	if c == SortByEmail {
		return u.Email
	}
	return u.Name
}

// SortDirection orders the displayed subset ascending or descending.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func (d SortDirection) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Arrow is the indicator shown next to the sorted column.
func (d SortDirection) Arrow() string {
	if d == Descending {
		return "▼"
	}
	return "▲"
}
