package client

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aanand-mishra/roster-api/internal/types"
)

// UserCard is the card body of a user: name, email, id.
func UserCard(u types.User) []string {
	return []string{u.Name, u.Email, "ID: " + strconv.FormatInt(u.ID, 10)}
}

// StudentCard is the card body of a student: name, course, id.
func StudentCard(s types.Student) []string {
	return []string{s.StudentName, s.CourseName, "ID: " + strconv.FormatInt(s.StudentID, 10)}
}

// RenderCards writes one card per item, separated by blank lines.
func RenderCards[T any](w io.Writer, items []T, card func(T) []string) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	for i, item := range items {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		for _, line := range card(item) {
			if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
				return err
			}
		}
	}

	return nil
}
